package report

import (
	"context"
	"slices"
	"strings"
	"time"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

const staleOpenClaimAge = 30 * 24 * time.Hour

// ClaimsDashboardParams bounds the claims fetch. An empty range defaults to
// the trailing six months. StatusFilter is applied server-side (joined by
// comma); ClaimTypes filters client-side.
type ClaimsDashboardParams struct {
	DateFrom     string
	DateTo       string
	StatusFilter []string
	ClaimTypes   []string
	Limit        int
}

type ClaimsSummary struct {
	TotalClaims  int     `json:"total_claims"`
	TotalAmount  float64 `json:"total_amount"`
	AvgAmount    float64 `json:"avg_amount"`
	OpenClaims   int     `json:"open_claims"`
	ClosedClaims int     `json:"closed_claims"`
}

type GroupStats struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

type ActionItem struct {
	Priority    string `json:"priority"`
	Description string `json:"description"`
	ClaimCount  int    `json:"claim_count"`
}

type ClaimsDashboard struct {
	Summary     ClaimsSummary         `json:"summary"`
	ByStatus    map[string]GroupStats `json:"by_status"`
	ByType      map[string]GroupStats `json:"by_type"`
	ActionItems []ActionItem          `json:"action_items"`
}

// ClaimsDashboard fetches one window of claims and derives summary totals,
// status/type group-bys, and the stale-open-claims action item.
func (s *Service) ClaimsDashboard(ctx context.Context, params ClaimsDashboardParams) (*ClaimsDashboard, error) {
	dateFrom := strings.TrimSpace(params.DateFrom)
	dateTo := strings.TrimSpace(params.DateTo)
	if dateFrom == "" {
		dateFrom = monthsAgo(s.today(), 6)
	}
	if dateTo == "" {
		dateTo = s.today().Format(dateLayout)
	}

	query := contractx.Params{
		"date_from": dateFrom,
		"date_to":   dateTo,
		"limit":     clampLimit(params.Limit, defaultClaimsLimit, maxClaimsLimit),
	}
	if len(params.StatusFilter) > 0 {
		query["status"] = strings.Join(params.StatusFilter, ",")
	}

	res, err := s.ams.Get(ctx, "/v1/claims", query)
	if err != nil {
		return nil, err
	}

	claims := res.Data
	if len(params.ClaimTypes) > 0 {
		filtered := make([]contractx.Record, 0, len(claims))
		for _, claim := range claims {
			if slices.Contains(params.ClaimTypes, claim.String("type")) {
				filtered = append(filtered, claim)
			}
		}
		claims = filtered
	}

	dashboard := &ClaimsDashboard{
		ByStatus:    map[string]GroupStats{},
		ByType:      map[string]GroupStats{},
		ActionItems: []ActionItem{},
	}

	staleCutoff := s.now().UTC().Add(-staleOpenClaimAge)
	staleOpen := 0

	for _, claim := range claims {
		amount := claim.Float("amount")
		status := claim.String("status")

		dashboard.Summary.TotalClaims++
		dashboard.Summary.TotalAmount += amount
		switch status {
		case "open":
			dashboard.Summary.OpenClaims++
		case "closed":
			dashboard.Summary.ClosedClaims++
		}

		bucket(dashboard.ByStatus, status, amount)
		bucket(dashboard.ByType, claim.String("type"), amount)

		if status == "open" {
			created := parseRecordTime(claim.String("date_created"))
			if !created.IsZero() && created.Before(staleCutoff) {
				staleOpen++
			}
		}
	}

	if dashboard.Summary.TotalClaims > 0 {
		dashboard.Summary.AvgAmount = dashboard.Summary.TotalAmount / float64(dashboard.Summary.TotalClaims)
	}

	if staleOpen > 0 {
		dashboard.ActionItems = append(dashboard.ActionItems, ActionItem{
			Priority:    "high",
			Description: "Review old open claims",
			ClaimCount:  staleOpen,
		})
	}

	return dashboard, nil
}

func bucket(groups map[string]GroupStats, key string, amount float64) {
	if key == "" {
		key = "unknown"
	}
	stats := groups[key]
	stats.Count++
	stats.TotalAmount += amount
	groups[key] = stats
}
