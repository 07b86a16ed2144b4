package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

// Catalog declares every tool the gateway exposes, each bound to the
// dispatcher. The input schemas are the external contract: the MCP layer
// validates arguments against them before the handler runs.
func Catalog(d *Dispatcher) []mcpserver.ServerTool {
	defs := []struct {
		name        string
		description string
		properties  map[string]any
		required    []string
	}{
		{
			name:        ToolCustomerProfile,
			description: "Customer profile rollup: base record plus recent policies, claims, and quotes with derived risk score and lifetime value.",
			properties: map[string]any{
				"customer_id":      prop("string", "Customer identifier in the agency-management system"),
				"include_policies": prop("boolean", "Attach recent policies (default true)"),
				"include_claims":   prop("boolean", "Attach recent claims (default true)"),
				"include_quotes":   prop("boolean", "Attach recent quotes (default true)"),
				"months_back":      prop("integer", "How many months of history to include (default 12)"),
			},
			required: []string{"customer_id"},
		},
		{
			name:        ToolAdvancedSearch,
			description: "Search customers by merged criteria and filters; leading results are enriched with a policy rollup.",
			properties: map[string]any{
				"criteria": objectProp("Search criteria, e.g. name or email fragments"),
				"filters":  objectProp("Additional field filters, e.g. status or state"),
				"limit":    prop("integer", "Maximum results (default 25, max 100)"),
			},
		},
		{
			name:        ToolPolicyDetails,
			description: "Policy detail view by id or policy number, with optional coverage, billing, and claims sections.",
			properties: map[string]any{
				"policy_id":        prop("string", "Policy identifier"),
				"policy_number":    prop("string", "Policy number, used when policy_id is unknown"),
				"include_coverage": prop("boolean", "Attach coverage records (default true)"),
				"include_billing":  prop("boolean", "Attach billing records (default true)"),
				"include_claims":   prop("boolean", "Attach claims on the policy (default true)"),
			},
		},
		{
			name:        ToolRenewalsReport,
			description: "Active policies expiring in a date range, enriched with the owning customer, recent claims, and a retain/review recommendation.",
			properties: map[string]any{
				"date_from":               prop("string", "Range start, YYYY-MM-DD"),
				"date_to":                 prop("string", "Range end, YYYY-MM-DD"),
				"policy_types":            arrayProp("Restrict to these policy types"),
				"limit":                   prop("integer", "Maximum policies (default 50, max 100)"),
				"include_recommendations": prop("boolean", "Compute renewal recommendations (default true)"),
			},
			required: []string{"date_from", "date_to"},
		},
		{
			name:        ToolClaimsDashboard,
			description: "Claims summary over a date range with status/type breakdowns and action items. Defaults to the trailing six months.",
			properties: map[string]any{
				"date_from":     prop("string", "Range start, YYYY-MM-DD"),
				"date_to":       prop("string", "Range end, YYYY-MM-DD"),
				"status_filter": arrayProp("Statuses to include, applied server-side"),
				"claim_types":   arrayProp("Claim types to include, applied client-side"),
				"limit":         prop("integer", "Maximum claims (default 100, max 200)"),
			},
		},
		{
			name:        ToolSalesPipeline,
			description: "CRM sales pipeline: leads joined with opportunities, per-lead value and score, and pipeline analytics.",
			properties: map[string]any{
				"stage":                prop("string", "Restrict leads to this pipeline stage"),
				"date_from":            prop("string", "Lead creation range start, YYYY-MM-DD"),
				"date_to":              prop("string", "Lead creation range end, YYYY-MM-DD"),
				"include_lead_scoring": prop("boolean", "Compute lead scores (default true)"),
				"limit":                prop("integer", "Maximum leads (default 50, max 100)"),
			},
		},
		{
			name:        ToolListCustomers,
			description: "List customers, optionally filtered by search term and status.",
			properties: map[string]any{
				"search": prop("string", "Free-text search term"),
				"status": prop("string", "Customer status filter"),
				"limit":  prop("integer", "Maximum results (default 25, max 100)"),
			},
		},
		{
			name:        ToolGetCustomer,
			description: "Fetch one customer record by id.",
			properties: map[string]any{
				"customer_id": prop("string", "Customer identifier"),
			},
			required: []string{"customer_id"},
		},
		{
			name:        ToolListPolicies,
			description: "List policies, optionally filtered by customer, status, and type.",
			properties: map[string]any{
				"customer_id": prop("string", "Restrict to this customer"),
				"status":      prop("string", "Policy status filter"),
				"policy_type": prop("string", "Policy type filter"),
				"limit":       prop("integer", "Maximum results (default 25, max 100)"),
			},
		},
		{
			name:        ToolListClaims,
			description: "List claims, optionally filtered by customer, policy, status, and date range.",
			properties: map[string]any{
				"customer_id": prop("string", "Restrict to this customer"),
				"policy_id":   prop("string", "Restrict to this policy"),
				"status":      prop("string", "Claim status filter"),
				"date_from":   prop("string", "Range start, YYYY-MM-DD"),
				"date_to":     prop("string", "Range end, YYYY-MM-DD"),
				"limit":       prop("integer", "Maximum results (default 25, max 100)"),
			},
		},
		{
			name:        ToolListQuotes,
			description: "List quotes, optionally filtered by customer and status.",
			properties: map[string]any{
				"customer_id": prop("string", "Restrict to this customer"),
				"status":      prop("string", "Quote status filter"),
				"limit":       prop("integer", "Maximum results (default 25, max 100)"),
			},
		},
		{
			name:        ToolListLeads,
			description: "List CRM leads, optionally filtered by status label and creation date range.",
			properties: map[string]any{
				"status_label": prop("string", "Lead status label filter"),
				"date_from":    prop("string", "Creation range start, YYYY-MM-DD"),
				"date_to":      prop("string", "Creation range end, YYYY-MM-DD"),
				"limit":        prop("integer", "Maximum results (default 25, max 100)"),
			},
		},
		{
			name:        ToolListContacts,
			description: "List CRM contacts, optionally filtered by lead and search term.",
			properties: map[string]any{
				"lead_id": prop("string", "Restrict to this lead"),
				"search":  prop("string", "Free-text search term"),
				"limit":   prop("integer", "Maximum results (default 25, max 100)"),
			},
		},
		{
			name:        ToolListOpportunities,
			description: "List CRM opportunities, optionally filtered by lead and stage.",
			properties: map[string]any{
				"lead_id": prop("string", "Restrict to this lead"),
				"stage":   prop("string", "Opportunity stage filter"),
				"limit":   prop("integer", "Maximum results (default 25, max 100)"),
			},
		},
	}

	tools := make([]mcpserver.ServerTool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, mcpserver.ServerTool{
			Tool: mcp.Tool{
				Name:        def.name,
				Description: def.description,
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: def.properties,
					Required:   def.required,
				},
			},
			Handler: handler(d, def.name),
		})
	}
	return tools
}

func handler(d *Dispatcher, name string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := req.Params.Arguments.(map[string]any)
		if !ok || args == nil {
			args = map[string]any{}
		}

		invocationID := uuid.NewString()
		log.Info().Str("tool", name).Str("invocation_id", invocationID).Msg("tool call")

		result := d.Dispatch(ctx, name, args)
		if result.Error != "" {
			log.Warn().Str("tool", name).Str("invocation_id", invocationID).Str("error", result.Error).Msg("tool call failed")
			return mcp.NewToolResultError(result.Error), nil
		}

		payload, err := json.Marshal(result.Result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func arrayProp(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

func objectProp(description string) map[string]any {
	return map[string]any{"type": "object", "description": description}
}
