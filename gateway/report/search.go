package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

// Only the leading results of a search get the per-customer policy rollup;
// the rest stay as bare search records.
const (
	searchEnrichmentWindow   = 10
	searchPoliciesPerCustomer = 5
)

// SearchParams merges caller criteria and filters into one AMS search call.
// Key collisions resolve in favor of Filters.
type SearchParams struct {
	Criteria map[string]any
	Filters  map[string]any
	Limit    int
}

type SearchHit struct {
	Customer     contractx.Record `json:"customer"`
	PolicyCount  int              `json:"policy_count"`
	TotalPremium float64          `json:"total_premium"`
	NextRenewal  string           `json:"next_renewal,omitempty"`
	Enriched     bool             `json:"enriched"`
}

type SearchReport struct {
	Customers    []SearchHit `json:"customers"`
	TotalResults int         `json:"total_results"`
}

// AdvancedCustomerSearch runs one merged search call, then enriches the
// first few hits with a bounded policy rollup. Enrichment fetches fan out
// concurrently; output order follows the search order, and a failed
// enrichment degrades that single record without dropping it.
func (s *Service) AdvancedCustomerSearch(ctx context.Context, params SearchParams) (*SearchReport, error) {
	if len(params.Criteria) == 0 && len(params.Filters) == 0 {
		return nil, fmt.Errorf("at least one search criterion is required: %w", contractx.ErrValidation)
	}

	query := contractx.Params{}
	for key, value := range params.Criteria {
		query[key] = value
	}
	for key, value := range params.Filters {
		query[key] = value
	}
	query["limit"] = clampLimit(params.Limit, defaultSearchLimit, maxSearchLimit)

	res, err := s.ams.Get(ctx, "/v1/customers", query)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, len(res.Data))
	for i, customer := range res.Data {
		hits[i] = SearchHit{Customer: customer}
	}

	window := len(hits)
	if window > searchEnrichmentWindow {
		window = searchEnrichmentWindow
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(enrichmentConcurrency)
	for i := 0; i < window; i++ {
		group.Go(func() error {
			s.enrichSearchHit(groupCtx, &hits[i])
			return nil
		})
	}
	// Goroutines never return errors; degradation happens per hit.
	_ = group.Wait()

	return &SearchReport{Customers: hits, TotalResults: len(hits)}, nil
}

func (s *Service) enrichSearchHit(ctx context.Context, hit *SearchHit) {
	customerID := hit.Customer.String("id")
	if customerID == "" {
		return
	}

	res, err := s.ams.Get(ctx, "/v1/policies", contractx.Params{
		"customer_id": customerID,
		"limit":       searchPoliciesPerCustomer,
	})
	if err != nil {
		// Bare search fields only for this record.
		return
	}

	hit.Enriched = true
	hit.PolicyCount = len(res.Data)
	for _, policy := range res.Data {
		hit.TotalPremium += policy.Float("premium_amount")
		if hit.NextRenewal == "" && policy.String("status") == "active" {
			hit.NextRenewal = policy.String("expiration_date")
		}
	}
}
