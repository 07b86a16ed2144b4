// Package report composes upstream lookups into derived reports: customer
// profiles, renewal reports, claims dashboards, and sales-pipeline
// analytics. Primary fetches are fatal for their operation; enrichment
// fetches degrade to empty and never abort a report.
package report

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

// Canonical per-operation defaults and caps. Limits passed above a cap are
// clamped, not rejected.
const (
	defaultSearchLimit    = 25
	defaultSectionLimit   = 25
	defaultRenewalsLimit  = 50
	defaultClaimsLimit    = 100
	defaultPipelineLimit  = 50
	defaultLookupLimit    = 25
	maxSearchLimit        = 100
	maxRenewalsLimit      = 100
	maxClaimsLimit        = 200
	maxPipelineLimit      = 100
	maxLookupLimit        = 100
	enrichmentConcurrency = 8
)

// Service orchestrates the AMS and CRM clients. It holds no state beyond
// its collaborators; every operation is request-scoped.
type Service struct {
	ams contractx.Fetcher
	crm contractx.Fetcher
	now func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source. Used by tests to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(ams, crm contractx.Fetcher, opts ...Option) *Service {
	s := &Service{
		ams: ams,
		crm: crm,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// section fetches an enrichment collection. Failure is logged and degrades
// to an empty slice; it never propagates to the caller.
func (s *Service) section(ctx context.Context, fetcher contractx.Fetcher, endpoint string, params contractx.Params) []contractx.Record {
	res, err := fetcher.Get(ctx, endpoint, params)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("enrichment fetch failed; defaulting to empty")
		return []contractx.Record{}
	}
	return res.Data
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func clampScore(score float64) float64 {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func setIfPresent(params contractx.Params, key, value string) {
	if value != "" {
		params[key] = value
	}
}
