package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

// CustomerProfileParams selects which collections to attach to the base
// customer record. MonthsBack bounds every inclusion; zero means 12.
type CustomerProfileParams struct {
	CustomerID      string
	IncludePolicies bool
	IncludeClaims   bool
	IncludeQuotes   bool
	MonthsBack      int
}

type CustomerProfile struct {
	Customer      contractx.Record   `json:"customer"`
	Policies      []contractx.Record `json:"policies"`
	Claims        []contractx.Record `json:"claims"`
	Quotes        []contractx.Record `json:"quotes"`
	RiskScore     float64            `json:"risk_score"`
	LifetimeValue float64            `json:"lifetime_value"`
}

// CustomerProfile assembles the customer rollup. The base customer fetch is
// fatal; each inclusion degrades independently to empty on failure.
func (s *Service) CustomerProfile(ctx context.Context, params CustomerProfileParams) (*CustomerProfile, error) {
	customerID := strings.TrimSpace(params.CustomerID)
	if customerID == "" {
		return nil, fmt.Errorf("customer_id is required: %w", contractx.ErrValidation)
	}

	base, err := s.ams.Get(ctx, "/v1/customers/"+url.PathEscape(customerID), nil)
	if err != nil {
		return nil, err
	}
	customer := base.One()
	if customer == nil {
		return nil, fmt.Errorf("customer %s not found: %w", customerID, contractx.ErrUpstream)
	}

	monthsBack := params.MonthsBack
	if monthsBack <= 0 {
		monthsBack = 12
	}
	dateFrom := monthsAgo(s.today(), monthsBack)

	profile := &CustomerProfile{
		Customer: customer,
		Policies: []contractx.Record{},
		Claims:   []contractx.Record{},
		Quotes:   []contractx.Record{},
	}

	if params.IncludePolicies {
		profile.Policies = s.section(ctx, s.ams, "/v1/policies", contractx.Params{
			"customer_id": customerID,
			"date_from":   dateFrom,
		})
	}
	if params.IncludeClaims {
		profile.Claims = s.section(ctx, s.ams, "/v1/claims", contractx.Params{
			"customer_id": customerID,
			"date_from":   dateFrom,
		})
	}
	if params.IncludeQuotes {
		profile.Quotes = s.section(ctx, s.ams, "/v1/quotes", contractx.Params{
			"customer_id": customerID,
			"date_from":   dateFrom,
		})
	}

	profile.RiskScore = riskScore(len(profile.Claims))
	profile.LifetimeValue = lifetimeValue(profile.Policies)

	return profile, nil
}

// riskScore starts at a neutral 5 and adds half a point per claim, capped
// at +3, clamped to [1, 10].
func riskScore(claimCount int) float64 {
	adjustment := float64(claimCount) * 0.5
	if adjustment > 3 {
		adjustment = 3
	}
	return clampScore(5 + adjustment)
}

// lifetimeValue projects annual premium over a fixed five-year retention
// assumption.
func lifetimeValue(policies []contractx.Record) float64 {
	var total float64
	for _, policy := range policies {
		total += policy.Float("premium_amount")
	}
	return total * 5
}
