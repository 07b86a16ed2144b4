package report

import (
	"context"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

const (
	pipelineLeadWindow       = 25
	pipelineOpportunityLimit = 100
	highValueThreshold       = 10000
)

// SalesPipelineParams bounds the CRM lead fetch. Stage maps to the CRM's
// status_label; the date range maps to date_created__gte/__lte.
type SalesPipelineParams struct {
	Stage              string
	DateFrom           string
	DateTo             string
	IncludeLeadScoring bool
	Limit              int
}

type PipelineLead struct {
	Lead                  contractx.Record   `json:"lead"`
	Opportunities         []contractx.Record `json:"opportunities"`
	TotalOpportunityValue float64            `json:"total_opportunity_value"`
	LeadScore             float64            `json:"lead_score,omitempty"`
}

type PipelineAnalytics struct {
	TotalLeads         int     `json:"total_leads"`
	TotalPipelineValue float64 `json:"total_pipeline_value"`
	AvgDealSize        float64 `json:"avg_deal_size"`
	HighValueLeads     int     `json:"high_value_leads"`
}

type SalesPipeline struct {
	Leads     []PipelineLead    `json:"leads"`
	Analytics PipelineAnalytics `json:"analytics"`
}

// SalesPipeline joins CRM opportunities onto leads by lead_id and derives
// per-lead value, optional lead scores, and pipeline analytics. A deal is
// one opportunity, so avg_deal_size divides pipeline value by the joined
// opportunity count.
func (s *Service) SalesPipeline(ctx context.Context, params SalesPipelineParams) (*SalesPipeline, error) {
	leadQuery := contractx.Params{
		"_limit": clampLimit(params.Limit, defaultPipelineLimit, maxPipelineLimit),
	}
	setIfPresent(leadQuery, "status_label", params.Stage)
	setIfPresent(leadQuery, "date_created__gte", params.DateFrom)
	setIfPresent(leadQuery, "date_created__lte", params.DateTo)

	leadsRes, err := s.crm.Get(ctx, "/api/v1/leads/", leadQuery)
	if err != nil {
		return nil, err
	}

	oppsByLead := map[string][]contractx.Record{}
	// Opportunities degrade like any enrichment: a failed fetch yields an
	// empty join, not a failed report.
	for _, opp := range s.section(ctx, s.crm, "/api/v1/opportunities/", contractx.Params{"_limit": pipelineOpportunityLimit}) {
		leadID := opp.String("lead_id")
		oppsByLead[leadID] = append(oppsByLead[leadID], opp)
	}

	leads := leadsRes.Data
	if len(leads) > pipelineLeadWindow {
		leads = leads[:pipelineLeadWindow]
	}

	pipeline := &SalesPipeline{Leads: make([]PipelineLead, 0, len(leads))}
	dealCount := 0

	for _, lead := range leads {
		opportunities := oppsByLead[lead.String("id")]
		if opportunities == nil {
			opportunities = []contractx.Record{}
		}

		entry := PipelineLead{Lead: lead, Opportunities: opportunities}
		for _, opp := range opportunities {
			entry.TotalOpportunityValue += opp.Float("value")
		}
		if params.IncludeLeadScoring {
			entry.LeadScore = leadScore(len(opportunities), contactCount(lead))
		}

		pipeline.Leads = append(pipeline.Leads, entry)
		pipeline.Analytics.TotalPipelineValue += entry.TotalOpportunityValue
		if entry.TotalOpportunityValue > highValueThreshold {
			pipeline.Analytics.HighValueLeads++
		}
		dealCount += len(opportunities)
	}

	pipeline.Analytics.TotalLeads = len(pipeline.Leads)
	if dealCount > 0 {
		pipeline.Analytics.AvgDealSize = pipeline.Analytics.TotalPipelineValue / float64(dealCount)
	}

	return pipeline, nil
}

// leadScore starts at 5, +2 for any opportunity, +1 for more than one
// contact, clamped to [1, 10].
func leadScore(opportunityCount, contacts int) float64 {
	score := 5.0
	if opportunityCount >= 1 {
		score += 2
	}
	if contacts > 1 {
		score += 1
	}
	return clampScore(score)
}

// contactCount reads the contacts the CRM embeds on a lead record.
func contactCount(lead contractx.Record) int {
	if contacts, ok := lead["contacts"].([]any); ok {
		return len(contacts)
	}
	return 0
}
