package contract

import (
	"bytes"
	"encoding/json"
)

// Params holds upstream-specific query parameters. Entries whose value is
// nil are never serialized; callers simply omit unset filters.
type Params map[string]any

// Record is one upstream row. The gateway never assumes a fixed schema
// beyond the fields it explicitly reads.
type Record map[string]any

// String returns the named field as a string, or "" when absent or not a
// string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float returns the named field as a float64. JSON numbers decode to
// float64; integer and string forms seen in upstream payloads are coerced.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// UpstreamResult is a parsed upstream response. Data is never nil: payloads
// without a data array normalize to an empty slice.
type UpstreamResult struct {
	Data []Record
	Raw  json.RawMessage
}

// One returns the payload as a single record: a top-level JSON object, else
// the first element of Data, else nil.
func (u UpstreamResult) One() Record {
	trimmed := bytes.TrimSpace(u.Raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var rec Record
		if err := json.Unmarshal(trimmed, &rec); err == nil {
			if _, hasData := rec["data"]; !hasData {
				return rec
			}
		}
	}
	if len(u.Data) > 0 {
		return u.Data[0]
	}
	return nil
}

// ToolResult is what the dispatch layer hands back to the protocol server.
// Error is a human-readable message; a non-empty Error means is_error.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
