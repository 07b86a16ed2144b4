// Package upstream implements the authenticated read clients for the two
// backing APIs: the agency-management system (AMS, bearer token) and the
// CRM (static API key). Both expose the same Fetcher contract; everything
// auth- and transport-specific stays behind it.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

const maxResponseSizeBytes = 8 << 20

// AMSConfig configures the agency-management-system client.
type AMSConfig struct {
	BaseURL      string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	ClientID     string        `envconfig:"CLIENT_ID" split_words:"true" required:"true"`
	ClientSecret string        `envconfig:"CLIENT_SECRET" split_words:"true" required:"true"`
	Timeout      time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// CRMConfig configures the CRM client.
type CRMConfig struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

var _ contractx.Fetcher = (*Client)(nil)

// Client issues authenticated GETs against one upstream and maps every
// failure into the contract error taxonomy.
type Client struct {
	upstream   string
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a client for one upstream. baseURL is trimmed of any
// trailing slash; endpoints passed to Get carry their own leading path.
func NewClient(upstream, baseURL string, creds CredentialSource, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("%s: base url is required", upstream)
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("%s: invalid base url: %w", upstream, err)
	}
	if creds == nil {
		return nil, fmt.Errorf("%s: credential source is required", upstream)
	}

	client := &Client{
		upstream:   upstream,
		baseURL:    trimmed,
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// NewAMSClient wires a bearer-token client whose token endpoint lives at
// {base}/v1/auth/refresh.
func NewAMSClient(cfg AMSConfig, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	httpClient := &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)}
	source, err := NewBearerSource("ams", base+"/v1/auth/refresh", cfg.ClientID, cfg.ClientSecret, httpClient)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithHTTPClient(httpClient)}, opts...)
	return NewClient("ams", base, source, opts...)
}

// NewCRMClient wires a basic-auth client for the CRM.
func NewCRMClient(cfg CRMConfig, opts ...Option) (*Client, error) {
	source, err := NewBasicSource(cfg.APIKey)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)}
	opts = append([]Option{WithHTTPClient(httpClient)}, opts...)
	return NewClient("crm", cfg.BaseURL, source, opts...)
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 30 * time.Second
	}
	return timeout
}

// Get issues an authenticated GET against the upstream. On a 401 from a
// refreshable credential it forces one refresh and retries exactly once; a
// second 401 surfaces as-is.
func (c *Client) Get(ctx context.Context, endpoint string, params contractx.Params) (contractx.UpstreamResult, error) {
	header, err := c.creds.Header(ctx)
	if err != nil {
		return contractx.UpstreamResult{}, err
	}

	fullURL := c.baseURL + endpoint
	if query := composeQuery(params); query != "" {
		fullURL += "?" + query
	}

	status, statusText, body, err := c.do(ctx, fullURL, header)
	if err != nil {
		return contractx.UpstreamResult{}, err
	}

	if status == http.StatusUnauthorized && c.creds.CanRefresh() {
		header, err = c.creds.Refresh(ctx)
		if err != nil {
			return contractx.UpstreamResult{}, &contractx.CredentialExpiredError{Upstream: c.upstream, Cause: err}
		}
		status, statusText, body, err = c.do(ctx, fullURL, header)
		if err != nil {
			return contractx.UpstreamResult{}, err
		}
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return contractx.UpstreamResult{}, &contractx.UpstreamError{
			Upstream:   c.upstream,
			Status:     status,
			StatusText: statusText,
			Body:       string(body),
		}
	}

	result, err := normalize(body)
	if err != nil {
		return contractx.UpstreamResult{}, &contractx.UpstreamError{
			Upstream: c.upstream,
			Status:   status,
			Reason:   fmt.Sprintf("unparsable response body: %v", err),
		}
	}

	log.Debug().Str("upstream", c.upstream).Str("endpoint", endpoint).Int("records", len(result.Data)).Msg("upstream fetch")
	return result, nil
}

func (c *Client) do(ctx context.Context, fullURL, authHeader string) (int, string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, "", nil, fmt.Errorf("%s: build request: %w", c.upstream, err)
	}
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", nil, fmt.Errorf("%s: execute request: %w", c.upstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return 0, "", nil, fmt.Errorf("%s: read response: %w", c.upstream, err)
	}
	return resp.StatusCode, http.StatusText(resp.StatusCode), raw, nil
}

// normalize parses an upstream body into UpstreamResult. A "data" array and
// a top-level array both populate Data; anything else leaves Data as an
// empty, non-nil slice so downstream code never sees null.
func normalize(raw []byte) (contractx.UpstreamResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return contractx.UpstreamResult{Data: []contractx.Record{}, Raw: trimmed}, nil
	}

	result := contractx.UpstreamResult{Data: []contractx.Record{}, Raw: append(json.RawMessage(nil), trimmed...)}

	switch trimmed[0] {
	case '[':
		var records []contractx.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return contractx.UpstreamResult{}, err
		}
		if records != nil {
			result.Data = records
		}
	case '{':
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return contractx.UpstreamResult{}, err
		}
		inner := bytes.TrimSpace(envelope.Data)
		if len(inner) > 0 && inner[0] == '[' {
			var records []contractx.Record
			if err := json.Unmarshal(inner, &records); err != nil {
				return contractx.UpstreamResult{}, err
			}
			if records != nil {
				result.Data = records
			}
		}
	default:
		return contractx.UpstreamResult{}, fmt.Errorf("unexpected JSON value")
	}

	return result, nil
}
