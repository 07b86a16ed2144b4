package report

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

type fetchCall struct {
	endpoint string
	params   contractx.Params
}

// fakeFetcher records calls and delegates responses to handle. The mutex
// matters: enrichment fan-out hits the fake concurrently.
type fakeFetcher struct {
	mu     sync.Mutex
	calls  []fetchCall
	handle func(endpoint string, params contractx.Params) (contractx.UpstreamResult, error)
}

func (f *fakeFetcher) Get(ctx context.Context, endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{endpoint: endpoint, params: params})
	f.mu.Unlock()
	if f.handle == nil {
		return contractx.UpstreamResult{Data: []contractx.Record{}}, nil
	}
	return f.handle(endpoint, params)
}

func (f *fakeFetcher) callsTo(endpoint string) []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fetchCall
	for _, call := range f.calls {
		if call.endpoint == endpoint {
			out = append(out, call)
		}
	}
	return out
}

func dataResult(records ...contractx.Record) contractx.UpstreamResult {
	if records == nil {
		records = []contractx.Record{}
	}
	return contractx.UpstreamResult{Data: records}
}

func oneResult(t *testing.T, record contractx.Record) contractx.UpstreamResult {
	t.Helper()
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return contractx.UpstreamResult{Data: []contractx.Record{}, Raw: raw}
}

func fixedClock(at time.Time) Option {
	return WithClock(func() time.Time { return at })
}

var testNow = time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC)
