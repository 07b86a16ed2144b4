package upstream

import (
	"fmt"
	"net/url"
	"strconv"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

// composeQuery serializes params into a canonical query string: keys sorted,
// nil entries skipped, keys and values URL-encoded. The composer is
// convention-agnostic; callers supply already-upstream-specific keys
// ("limit" for the AMS, "_limit"/"status_label" for the CRM).
func composeQuery(params contractx.Params) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for key, value := range params {
		if value == nil {
			continue
		}
		values.Set(key, stringifyParam(value))
	}
	return values.Encode()
}

func stringifyParam(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
