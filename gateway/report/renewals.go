package report

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

const (
	renewalsEnrichmentWindow = 20
	renewalsClaimsPerPolicy  = 5
	renewalsClaimsMonthsBack = 24
	reviewClaimThreshold     = 2
)

// RenewalsParams bounds the expiring-policy window. DateFrom/DateTo are
// required, formatted YYYY-MM-DD.
type RenewalsParams struct {
	DateFrom               string
	DateTo                 string
	PolicyTypes            []string
	Limit                  int
	IncludeRecommendations bool
}

type Recommendation struct {
	Action     string   `json:"action"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

type EnhancedPolicy struct {
	Policy         contractx.Record   `json:"policy"`
	Customer       contractx.Record   `json:"customer,omitempty"`
	RecentClaims   []contractx.Record `json:"recent_claims"`
	Recommendation *Recommendation    `json:"recommendation,omitempty"`
}

type RenewalsSummary struct {
	TotalPolicies            int     `json:"total_policies"`
	TotalPremium             float64 `json:"total_premium"`
	AvgPremium               float64 `json:"avg_premium"`
	RetentionRecommendations int     `json:"retention_recommendations"`
}

type RenewalsReport struct {
	Summary          RenewalsSummary  `json:"summary"`
	EnhancedPolicies []EnhancedPolicy `json:"enhanced_policies"`
}

// RenewalsReport lists active policies expiring inside the range, enriches
// the leading ones with the owning customer and their trailing-24-month
// claims, and recommends retain or review per policy.
func (s *Service) RenewalsReport(ctx context.Context, params RenewalsParams) (*RenewalsReport, error) {
	dateFrom := strings.TrimSpace(params.DateFrom)
	dateTo := strings.TrimSpace(params.DateTo)
	if dateFrom == "" || dateTo == "" {
		return nil, fmt.Errorf("date_from and date_to are required: %w", contractx.ErrValidation)
	}

	res, err := s.ams.Get(ctx, "/v1/policies", contractx.Params{
		"status":               "active",
		"expiration_date_from": dateFrom,
		"expiration_date_to":   dateTo,
		"limit":                clampLimit(params.Limit, defaultRenewalsLimit, maxRenewalsLimit),
	})
	if err != nil {
		return nil, err
	}

	policies := res.Data
	if len(params.PolicyTypes) > 0 {
		filtered := make([]contractx.Record, 0, len(policies))
		for _, policy := range policies {
			if slices.Contains(params.PolicyTypes, policy.String("type")) {
				filtered = append(filtered, policy)
			}
		}
		policies = filtered
	}

	report := &RenewalsReport{EnhancedPolicies: []EnhancedPolicy{}}
	report.Summary.TotalPolicies = len(policies)
	for _, policy := range policies {
		report.Summary.TotalPremium += policy.Float("premium_amount")
	}
	if len(policies) > 0 {
		report.Summary.AvgPremium = report.Summary.TotalPremium / float64(len(policies))
	}

	window := len(policies)
	if window > renewalsEnrichmentWindow {
		window = renewalsEnrichmentWindow
	}

	enhanced := make([]EnhancedPolicy, window)
	claimsSince := monthsAgo(s.today(), renewalsClaimsMonthsBack)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(enrichmentConcurrency)
	for i := 0; i < window; i++ {
		group.Go(func() error {
			enhanced[i] = s.enhancePolicy(groupCtx, policies[i], claimsSince, params.IncludeRecommendations)
			return nil
		})
	}
	_ = group.Wait()

	report.EnhancedPolicies = enhanced
	for _, ep := range enhanced {
		if ep.Recommendation != nil && ep.Recommendation.Action == "retain" {
			report.Summary.RetentionRecommendations++
		}
	}

	return report, nil
}

func (s *Service) enhancePolicy(ctx context.Context, policy contractx.Record, claimsSince string, recommend bool) EnhancedPolicy {
	ep := EnhancedPolicy{Policy: policy, RecentClaims: []contractx.Record{}}

	customerID := policy.String("customer_id")
	if customerID != "" {
		if res, err := s.ams.Get(ctx, "/v1/customers/"+url.PathEscape(customerID), nil); err == nil {
			ep.Customer = res.One()
		}
		ep.RecentClaims = s.section(ctx, s.ams, "/v1/claims", contractx.Params{
			"customer_id": customerID,
			"date_from":   claimsSince,
			"limit":       renewalsClaimsPerPolicy,
		})
	}

	if recommend {
		ep.Recommendation = recommendRenewal(len(ep.RecentClaims))
	}
	return ep
}

func recommendRenewal(claimCount int) *Recommendation {
	if claimCount > reviewClaimThreshold {
		return &Recommendation{
			Action:     "review",
			Confidence: 0.65,
			Reasons:    []string{"claims activity above normal for this policy; review terms before renewal"},
		}
	}
	return &Recommendation{
		Action:     "retain",
		Confidence: 0.85,
		Reasons:    []string{"low claims activity; standard renewal recommended"},
	}
}
