package report

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

func renewalsFake(t *testing.T, claimsByCustomer map[string]int) *fakeFetcher {
	t.Helper()
	return &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		switch endpoint {
		case "/v1/policies":
			if params["status"] != "active" {
				t.Errorf("renewals must fetch active policies, got %v", params["status"])
			}
			return dataResult(
				contractx.Record{"id": "P1", "customer_id": "C1", "premium_amount": 1000.0, "type": "auto"},
				contractx.Record{"id": "P2", "customer_id": "C2", "premium_amount": 2000.0, "type": "home"},
				contractx.Record{"id": "P3", "customer_id": "C3", "premium_amount": 3000.0, "type": "auto"},
			), nil
		case "/v1/customers/C1", "/v1/customers/C2", "/v1/customers/C3":
			id := endpoint[len("/v1/customers/"):]
			return oneResult(t, contractx.Record{"id": id}), nil
		case "/v1/claims":
			customerID, _ := params["customer_id"].(string)
			count := claimsByCustomer[customerID]
			claims := make([]contractx.Record, count)
			for i := range claims {
				claims[i] = contractx.Record{"id": "CL"}
			}
			return dataResult(claims...), nil
		}
		return dataResult(), nil
	}}
}

func TestRenewalsReportRecommendations(t *testing.T) {
	t.Parallel()

	// One policy's customer has 3 trailing claims; the others have none.
	ams := renewalsFake(t, map[string]int{"C2": 3})

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	report, err := svc.RenewalsReport(context.Background(), RenewalsParams{
		DateFrom:               "2026-09-01",
		DateTo:                 "2026-12-31",
		IncludeRecommendations: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Summary.TotalPolicies != 3 {
		t.Fatalf("unexpected total: %d", report.Summary.TotalPolicies)
	}
	if report.Summary.TotalPremium != 6000 {
		t.Fatalf("unexpected premium sum: %v", report.Summary.TotalPremium)
	}
	if report.Summary.AvgPremium != 2000 {
		t.Fatalf("unexpected average: %v", report.Summary.AvgPremium)
	}
	if report.Summary.RetentionRecommendations != 2 {
		t.Fatalf("expected 2 retain recommendations, got %d", report.Summary.RetentionRecommendations)
	}

	if len(report.EnhancedPolicies) != 3 {
		t.Fatalf("unexpected enhanced count: %d", len(report.EnhancedPolicies))
	}
	for _, ep := range report.EnhancedPolicies {
		rec := ep.Recommendation
		if rec == nil {
			t.Fatal("recommendation missing")
		}
		if ep.Policy.String("customer_id") == "C2" {
			if rec.Action != "review" || rec.Confidence != 0.65 {
				t.Fatalf("claims-heavy policy must be reviewed: %+v", rec)
			}
		} else if rec.Action != "retain" || rec.Confidence != 0.85 {
			t.Fatalf("quiet policy must be retained: %+v", rec)
		}
		if len(rec.Reasons) != 1 {
			t.Fatalf("expected a single fixed reason, got %v", rec.Reasons)
		}
	}

	// Output order matches the policy fetch order.
	for i, want := range []string{"P1", "P2", "P3"} {
		if report.EnhancedPolicies[i].Policy.String("id") != want {
			t.Fatalf("order broken at %d: %v", i, report.EnhancedPolicies[i].Policy)
		}
	}
}

func TestRenewalsReportPolicyTypeFilter(t *testing.T) {
	t.Parallel()

	ams := renewalsFake(t, nil)
	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	report, err := svc.RenewalsReport(context.Background(), RenewalsParams{
		DateFrom:    "2026-09-01",
		DateTo:      "2026-12-31",
		PolicyTypes: []string{"auto"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Summary.TotalPolicies != 2 {
		t.Fatalf("type filter not applied: %d", report.Summary.TotalPolicies)
	}
	if report.Summary.TotalPremium != 4000 {
		t.Fatalf("unexpected premium sum: %v", report.Summary.TotalPremium)
	}
}

func TestRenewalsReportEmptyRangeAvoidsDivisionByZero(t *testing.T) {
	t.Parallel()

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		return dataResult(), nil
	}}
	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	report, err := svc.RenewalsReport(context.Background(), RenewalsParams{
		DateFrom: "2026-09-01",
		DateTo:   "2026-09-30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Summary.AvgPremium != 0 {
		t.Fatalf("avg must be 0 for empty set, got %v", report.Summary.AvgPremium)
	}
	if len(report.EnhancedPolicies) != 0 {
		t.Fatalf("unexpected enhanced policies: %v", report.EnhancedPolicies)
	}
}

func TestRenewalsReportRequiresRange(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeFetcher{}, &fakeFetcher{}, fixedClock(testNow))
	_, err := svc.RenewalsReport(context.Background(), RenewalsParams{DateFrom: "2026-09-01"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenewalsReportEnrichmentUsesTrailing24Months(t *testing.T) {
	t.Parallel()

	ams := renewalsFake(t, nil)
	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	if _, err := svc.RenewalsReport(context.Background(), RenewalsParams{
		DateFrom: "2026-09-01",
		DateTo:   "2026-12-31",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, call := range ams.callsTo("/v1/claims") {
		if call.params["date_from"] != "2024-08-15" {
			t.Fatalf("claims window must trail 24 months, got %v", call.params["date_from"])
		}
		if call.params["limit"] != 5 {
			t.Fatalf("claims per policy must cap at 5, got %v", call.params["limit"])
		}
	}
}
