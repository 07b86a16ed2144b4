package contract

import "context"

// Fetcher is the read-only face of an upstream client. Implementations own
// auth, query composition, and error mapping; callers see only endpoint
// paths and upstream-specific parameter keys.
type Fetcher interface {
	Get(ctx context.Context, endpoint string, params Params) (UpstreamResult, error)
}
