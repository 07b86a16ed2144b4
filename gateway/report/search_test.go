package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

func TestAdvancedCustomerSearchMergesCriteriaAndFilters(t *testing.T) {
	t.Parallel()

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		if endpoint == "/v1/customers" {
			if params["name"] != "smith" || params["status"] != "active" {
				t.Errorf("criteria and filters not merged: %v", params)
			}
			if params["limit"] != 25 {
				t.Errorf("default limit not applied: %v", params["limit"])
			}
			return dataResult(contractx.Record{"id": "C1", "name": "Smith"}), nil
		}
		return dataResult(), nil
	}}

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	report, err := svc.AdvancedCustomerSearch(context.Background(), SearchParams{
		Criteria: map[string]any{"name": "smith"},
		Filters:  map[string]any{"status": "active"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalResults != 1 {
		t.Fatalf("unexpected total: %d", report.TotalResults)
	}
}

func TestAdvancedCustomerSearchEnrichesLeadingResultsInOrder(t *testing.T) {
	t.Parallel()

	customers := make([]contractx.Record, 12)
	for i := range customers {
		customers[i] = contractx.Record{"id": fmt.Sprintf("C%d", i)}
	}

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		switch endpoint {
		case "/v1/customers":
			return dataResult(customers...), nil
		case "/v1/policies":
			customerID, _ := params["customer_id"].(string)
			if params["limit"] != 5 {
				t.Errorf("enrichment must cap policies at 5, got %v", params["limit"])
			}
			return dataResult(
				contractx.Record{"id": "P-" + customerID, "premium_amount": 100.0, "status": "active", "expiration_date": "2026-12-01"},
			), nil
		}
		return dataResult(), nil
	}}

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	report, err := svc.AdvancedCustomerSearch(context.Background(), SearchParams{
		Criteria: map[string]any{"state": "CA"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Customers) != 12 {
		t.Fatalf("no record may be dropped, got %d", len(report.Customers))
	}

	// Output order matches search order regardless of completion order.
	for i, hit := range report.Customers {
		if hit.Customer.String("id") != fmt.Sprintf("C%d", i) {
			t.Fatalf("order broken at %d: %v", i, hit.Customer)
		}
	}
	// Only the first 10 are enriched.
	for i, hit := range report.Customers {
		if i < 10 && !hit.Enriched {
			t.Fatalf("hit %d should be enriched", i)
		}
		if i >= 10 && hit.Enriched {
			t.Fatalf("hit %d should stay bare", i)
		}
	}
	first := report.Customers[0]
	if first.PolicyCount != 1 || first.TotalPremium != 100 || first.NextRenewal != "2026-12-01" {
		t.Fatalf("unexpected enrichment: %+v", first)
	}
	if len(ams.callsTo("/v1/policies")) != 10 {
		t.Fatalf("expected 10 enrichment calls, got %d", len(ams.callsTo("/v1/policies")))
	}
}

func TestAdvancedCustomerSearchEnrichmentFailureKeepsRecord(t *testing.T) {
	t.Parallel()

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		switch endpoint {
		case "/v1/customers":
			return dataResult(contractx.Record{"id": "C1"}, contractx.Record{"id": "C2"}), nil
		case "/v1/policies":
			if params["customer_id"] == "C1" {
				return contractx.UpstreamResult{}, &contractx.UpstreamError{Upstream: "ams", Status: http.StatusInternalServerError}
			}
			return dataResult(contractx.Record{"id": "P2", "premium_amount": 300.0}), nil
		}
		return dataResult(), nil
	}}

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	report, err := svc.AdvancedCustomerSearch(context.Background(), SearchParams{
		Filters: map[string]any{"status": "active"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Customers) != 2 {
		t.Fatal("enrichment failure must never drop a record")
	}
	if report.Customers[0].Enriched {
		t.Fatal("failed enrichment must leave the record bare")
	}
	if !report.Customers[1].Enriched || report.Customers[1].TotalPremium != 300 {
		t.Fatalf("unexpected enrichment: %+v", report.Customers[1])
	}
}

func TestAdvancedCustomerSearchRequiresCriteria(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeFetcher{}, &fakeFetcher{}, fixedClock(testNow))
	_, err := svc.AdvancedCustomerSearch(context.Background(), SearchParams{})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdvancedCustomerSearchClampsLimit(t *testing.T) {
	t.Parallel()

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		if endpoint == "/v1/customers" && params["limit"] != 100 {
			t.Errorf("limit must clamp to 100, got %v", params["limit"])
		}
		return dataResult(), nil
	}}

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	if _, err := svc.AdvancedCustomerSearch(context.Background(), SearchParams{
		Criteria: map[string]any{"name": "x"},
		Limit:    500,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
