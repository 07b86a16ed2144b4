package report

import (
	"context"
	"errors"
	"net/http"
	"testing"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

func TestPolicyDetailsByID(t *testing.T) {
	t.Parallel()

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		switch endpoint {
		case "/v1/policies/P1":
			return oneResult(t, contractx.Record{"id": "P1", "policy_number": "POL-001"}), nil
		case "/v1/coverages", "/v1/invoices", "/v1/claims":
			if params["policy_id"] != "P1" {
				t.Errorf("section not scoped to policy: %v", params)
			}
			return dataResult(contractx.Record{"id": "X"}), nil
		}
		return dataResult(), nil
	}}

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	details, err := svc.PolicyDetails(context.Background(), PolicyDetailsParams{
		PolicyID:        "P1",
		IncludeCoverage: true,
		IncludeBilling:  true,
		IncludeClaims:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Policy.String("id") != "P1" {
		t.Fatalf("unexpected policy: %v", details.Policy)
	}
	if len(details.Coverage) != 1 || len(details.Billing) != 1 || len(details.Claims) != 1 {
		t.Fatal("all sections should be populated")
	}
	if !details.ComplianceStatus.Compliant || len(details.ComplianceStatus.Issues) != 0 {
		t.Fatalf("compliance stub must report compliant: %+v", details.ComplianceStatus)
	}
	if details.ComplianceStatus.CheckedAt.IsZero() {
		t.Fatal("compliance stub must carry a timestamp")
	}
}

func TestPolicyDetailsByNumber(t *testing.T) {
	t.Parallel()

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		if endpoint == "/v1/policies" {
			if params["policy_number"] != "POL-002" || params["limit"] != 1 {
				t.Errorf("unexpected lookup params: %v", params)
			}
			return dataResult(contractx.Record{"id": "P2", "policy_number": "POL-002"}), nil
		}
		return dataResult(), nil
	}}

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	details, err := svc.PolicyDetails(context.Background(), PolicyDetailsParams{PolicyNumber: "POL-002"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Policy.String("id") != "P2" {
		t.Fatalf("unexpected policy: %v", details.Policy)
	}
}

func TestPolicyDetailsSectionFailureDefaultsEmpty(t *testing.T) {
	t.Parallel()

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		switch endpoint {
		case "/v1/policies/P1":
			return oneResult(t, contractx.Record{"id": "P1"}), nil
		case "/v1/invoices":
			return contractx.UpstreamResult{}, &contractx.UpstreamError{Upstream: "ams", Status: http.StatusServiceUnavailable}
		case "/v1/coverages":
			return dataResult(contractx.Record{"id": "COV1"}), nil
		}
		return dataResult(), nil
	}}

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	details, err := svc.PolicyDetails(context.Background(), PolicyDetailsParams{
		PolicyID:        "P1",
		IncludeCoverage: true,
		IncludeBilling:  true,
	})
	if err != nil {
		t.Fatalf("section failure must not abort: %v", err)
	}
	if len(details.Billing) != 0 {
		t.Fatalf("failed section must default to empty, got %v", details.Billing)
	}
	if len(details.Coverage) != 1 {
		t.Fatal("surviving section must stay populated")
	}
}

func TestPolicyDetailsNotFound(t *testing.T) {
	t.Parallel()

	ams := &fakeFetcher{handle: func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
		return dataResult(), nil
	}}

	svc := NewService(ams, &fakeFetcher{}, fixedClock(testNow))
	_, err := svc.PolicyDetails(context.Background(), PolicyDetailsParams{PolicyNumber: "POL-404"})
	if !errors.Is(err, contractx.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestPolicyDetailsRequiresIdentifier(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeFetcher{}, &fakeFetcher{}, fixedClock(testNow))
	_, err := svc.PolicyDetails(context.Background(), PolicyDetailsParams{})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
