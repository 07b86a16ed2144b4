package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

// Thin single-call lookups. Unlike enrichment fetches these are primary:
// any upstream failure propagates to the caller.

type ListCustomersParams struct {
	Search string
	Status string
	Limit  int
}

func (s *Service) ListCustomers(ctx context.Context, params ListCustomersParams) ([]contractx.Record, error) {
	query := contractx.Params{"limit": clampLimit(params.Limit, defaultLookupLimit, maxLookupLimit)}
	setIfPresent(query, "search", params.Search)
	setIfPresent(query, "status", params.Status)
	res, err := s.ams.Get(ctx, "/v1/customers", query)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (s *Service) GetCustomer(ctx context.Context, customerID string) (contractx.Record, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, fmt.Errorf("customer_id is required: %w", contractx.ErrValidation)
	}
	res, err := s.ams.Get(ctx, "/v1/customers/"+url.PathEscape(customerID), nil)
	if err != nil {
		return nil, err
	}
	customer := res.One()
	if customer == nil {
		return nil, fmt.Errorf("customer %s not found: %w", customerID, contractx.ErrUpstream)
	}
	return customer, nil
}

type ListPoliciesParams struct {
	CustomerID string
	Status     string
	PolicyType string
	Limit      int
}

func (s *Service) ListPolicies(ctx context.Context, params ListPoliciesParams) ([]contractx.Record, error) {
	query := contractx.Params{"limit": clampLimit(params.Limit, defaultLookupLimit, maxLookupLimit)}
	setIfPresent(query, "customer_id", params.CustomerID)
	setIfPresent(query, "status", params.Status)
	setIfPresent(query, "type", params.PolicyType)
	res, err := s.ams.Get(ctx, "/v1/policies", query)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

type ListClaimsParams struct {
	CustomerID string
	PolicyID   string
	Status     string
	DateFrom   string
	DateTo     string
	Limit      int
}

func (s *Service) ListClaims(ctx context.Context, params ListClaimsParams) ([]contractx.Record, error) {
	query := contractx.Params{"limit": clampLimit(params.Limit, defaultLookupLimit, maxLookupLimit)}
	setIfPresent(query, "customer_id", params.CustomerID)
	setIfPresent(query, "policy_id", params.PolicyID)
	setIfPresent(query, "status", params.Status)
	setIfPresent(query, "date_from", params.DateFrom)
	setIfPresent(query, "date_to", params.DateTo)
	res, err := s.ams.Get(ctx, "/v1/claims", query)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

type ListQuotesParams struct {
	CustomerID string
	Status     string
	Limit      int
}

func (s *Service) ListQuotes(ctx context.Context, params ListQuotesParams) ([]contractx.Record, error) {
	query := contractx.Params{"limit": clampLimit(params.Limit, defaultLookupLimit, maxLookupLimit)}
	setIfPresent(query, "customer_id", params.CustomerID)
	setIfPresent(query, "status", params.Status)
	res, err := s.ams.Get(ctx, "/v1/quotes", query)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

type ListLeadsParams struct {
	StatusLabel string
	DateFrom    string
	DateTo      string
	Limit       int
}

func (s *Service) ListLeads(ctx context.Context, params ListLeadsParams) ([]contractx.Record, error) {
	query := contractx.Params{"_limit": clampLimit(params.Limit, defaultLookupLimit, maxLookupLimit)}
	setIfPresent(query, "status_label", params.StatusLabel)
	setIfPresent(query, "date_created__gte", params.DateFrom)
	setIfPresent(query, "date_created__lte", params.DateTo)
	res, err := s.crm.Get(ctx, "/api/v1/leads/", query)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

type ListContactsParams struct {
	LeadID string
	Search string
	Limit  int
}

func (s *Service) ListContacts(ctx context.Context, params ListContactsParams) ([]contractx.Record, error) {
	query := contractx.Params{"_limit": clampLimit(params.Limit, defaultLookupLimit, maxLookupLimit)}
	setIfPresent(query, "lead_id", params.LeadID)
	setIfPresent(query, "query", params.Search)
	res, err := s.crm.Get(ctx, "/api/v1/contacts/", query)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

type ListOpportunitiesParams struct {
	LeadID string
	Stage  string
	Limit  int
}

func (s *Service) ListOpportunities(ctx context.Context, params ListOpportunitiesParams) ([]contractx.Record, error) {
	query := contractx.Params{"_limit": clampLimit(params.Limit, defaultLookupLimit, maxLookupLimit)}
	setIfPresent(query, "lead_id", params.LeadID)
	setIfPresent(query, "status_label", params.Stage)
	res, err := s.crm.Get(ctx, "/api/v1/opportunities/", query)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
