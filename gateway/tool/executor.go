// Package tool declares the gateway's MCP tool catalog and dispatches
// validated calls into the report service. Every outcome, failures included,
// comes back as a ToolResult; the protocol layer never sees an unhandled
// error.
package tool

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
	reportx "github.com/agencymesh/insurance-mcp-gateway/gateway/report"
)

// Tool names form the external contract; the schema layer validates
// arguments against the catalog before dispatch.
const (
	ToolCustomerProfile    = "get_customer_profile"
	ToolAdvancedSearch     = "search_customers_advanced"
	ToolPolicyDetails      = "get_policy_details"
	ToolRenewalsReport     = "get_renewals_report"
	ToolClaimsDashboard    = "get_claims_dashboard"
	ToolSalesPipeline      = "get_sales_pipeline"
	ToolListCustomers      = "list_customers"
	ToolGetCustomer        = "get_customer"
	ToolListPolicies       = "list_policies"
	ToolListClaims         = "list_claims"
	ToolListQuotes         = "list_quotes"
	ToolListLeads          = "list_leads"
	ToolListContacts       = "list_contacts"
	ToolListOpportunities  = "list_opportunities"
)

// Dispatcher routes a (tool, arguments) pair to its handler.
type Dispatcher struct {
	svc *reportx.Service
}

func NewDispatcher(svc *reportx.Service) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Dispatch executes one tool call. A non-empty Error on the result means
// is_error for the protocol layer.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) contractx.ToolResult {
	result, err := d.invoke(ctx, name, args)
	if err != nil {
		return contractx.ToolResult{Tool: name, Error: failureMessage(err)}
	}
	return contractx.ToolResult{Tool: name, Result: result}
}

func (d *Dispatcher) invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolCustomerProfile:
		return d.svc.CustomerProfile(ctx, reportx.CustomerProfileParams{
			CustomerID:      stringArg(args, "customer_id"),
			IncludePolicies: boolArg(args, "include_policies", true),
			IncludeClaims:   boolArg(args, "include_claims", true),
			IncludeQuotes:   boolArg(args, "include_quotes", true),
			MonthsBack:      intArg(args, "months_back"),
		})
	case ToolAdvancedSearch:
		return d.svc.AdvancedCustomerSearch(ctx, reportx.SearchParams{
			Criteria: objectArg(args, "criteria"),
			Filters:  objectArg(args, "filters"),
			Limit:    intArg(args, "limit"),
		})
	case ToolPolicyDetails:
		return d.svc.PolicyDetails(ctx, reportx.PolicyDetailsParams{
			PolicyID:        stringArg(args, "policy_id"),
			PolicyNumber:    stringArg(args, "policy_number"),
			IncludeCoverage: boolArg(args, "include_coverage", true),
			IncludeBilling:  boolArg(args, "include_billing", true),
			IncludeClaims:   boolArg(args, "include_claims", true),
		})
	case ToolRenewalsReport:
		return d.svc.RenewalsReport(ctx, reportx.RenewalsParams{
			DateFrom:               stringArg(args, "date_from"),
			DateTo:                 stringArg(args, "date_to"),
			PolicyTypes:            stringSliceArg(args, "policy_types"),
			Limit:                  intArg(args, "limit"),
			IncludeRecommendations: boolArg(args, "include_recommendations", true),
		})
	case ToolClaimsDashboard:
		return d.svc.ClaimsDashboard(ctx, reportx.ClaimsDashboardParams{
			DateFrom:     stringArg(args, "date_from"),
			DateTo:       stringArg(args, "date_to"),
			StatusFilter: stringSliceArg(args, "status_filter"),
			ClaimTypes:   stringSliceArg(args, "claim_types"),
			Limit:        intArg(args, "limit"),
		})
	case ToolSalesPipeline:
		return d.svc.SalesPipeline(ctx, reportx.SalesPipelineParams{
			Stage:              stringArg(args, "stage"),
			DateFrom:           stringArg(args, "date_from"),
			DateTo:             stringArg(args, "date_to"),
			IncludeLeadScoring: boolArg(args, "include_lead_scoring", true),
			Limit:              intArg(args, "limit"),
		})
	case ToolListCustomers:
		return d.svc.ListCustomers(ctx, reportx.ListCustomersParams{
			Search: stringArg(args, "search"),
			Status: stringArg(args, "status"),
			Limit:  intArg(args, "limit"),
		})
	case ToolGetCustomer:
		return d.svc.GetCustomer(ctx, stringArg(args, "customer_id"))
	case ToolListPolicies:
		return d.svc.ListPolicies(ctx, reportx.ListPoliciesParams{
			CustomerID: stringArg(args, "customer_id"),
			Status:     stringArg(args, "status"),
			PolicyType: stringArg(args, "policy_type"),
			Limit:      intArg(args, "limit"),
		})
	case ToolListClaims:
		return d.svc.ListClaims(ctx, reportx.ListClaimsParams{
			CustomerID: stringArg(args, "customer_id"),
			PolicyID:   stringArg(args, "policy_id"),
			Status:     stringArg(args, "status"),
			DateFrom:   stringArg(args, "date_from"),
			DateTo:     stringArg(args, "date_to"),
			Limit:      intArg(args, "limit"),
		})
	case ToolListQuotes:
		return d.svc.ListQuotes(ctx, reportx.ListQuotesParams{
			CustomerID: stringArg(args, "customer_id"),
			Status:     stringArg(args, "status"),
			Limit:      intArg(args, "limit"),
		})
	case ToolListLeads:
		return d.svc.ListLeads(ctx, reportx.ListLeadsParams{
			StatusLabel: stringArg(args, "status_label"),
			DateFrom:    stringArg(args, "date_from"),
			DateTo:      stringArg(args, "date_to"),
			Limit:       intArg(args, "limit"),
		})
	case ToolListContacts:
		return d.svc.ListContacts(ctx, reportx.ListContactsParams{
			LeadID: stringArg(args, "lead_id"),
			Search: stringArg(args, "search"),
			Limit:  intArg(args, "limit"),
		})
	case ToolListOpportunities:
		return d.svc.ListOpportunities(ctx, reportx.ListOpportunitiesParams{
			LeadID: stringArg(args, "lead_id"),
			Stage:  stringArg(args, "stage"),
			Limit:  intArg(args, "limit"),
		})
	default:
		return nil, fmt.Errorf("unknown tool %q: %w", name, contractx.ErrValidation)
	}
}

// failureMessage maps taxonomy errors to the human-readable message the
// protocol layer surfaces alongside is_error.
func failureMessage(err error) string {
	var expired *contractx.CredentialExpiredError
	if errors.As(err, &expired) {
		return expired.Error()
	}
	var cred *contractx.CredentialError
	if errors.As(err, &cred) {
		return cred.Error() + "; verify the configured upstream credentials"
	}
	var up *contractx.UpstreamError
	if errors.As(err, &up) {
		return up.Error()
	}
	return err.Error()
}
