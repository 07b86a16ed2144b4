package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

// Tokens are treated as expired this long before the issuer-reported
// lifetime runs out, so a token is never presented right at the edge.
const expiryMargin = 60 * time.Second

// CredentialSource yields the Authorization header value for an upstream.
type CredentialSource interface {
	// Header returns the full header value, e.g. "Bearer <token>".
	Header(ctx context.Context) (string, error)
	// Refresh discards any cached credential and acquires a fresh one.
	// Sources that cannot refresh return an error.
	Refresh(ctx context.Context) (string, error)
	// CanRefresh reports whether a 401 should trigger Refresh plus retry.
	CanRefresh() bool
}

// BearerSource caches a short-lived bearer token and refreshes it through
// the issuer's client-credentials endpoint. Concurrent callers may race to
// refresh; last writer wins, which the expiry margin tolerates.
type BearerSource struct {
	upstream     string
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

func NewBearerSource(upstream, tokenURL, clientID, clientSecret string, httpClient *http.Client) (*BearerSource, error) {
	if strings.TrimSpace(tokenURL) == "" {
		return nil, errors.New("token url is required")
	}
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, errors.New("client credentials are required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &BearerSource{
		upstream:     upstream,
		tokenURL:     tokenURL,
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		httpClient:   httpClient,
		now:          time.Now,
	}, nil
}

func (s *BearerSource) CanRefresh() bool { return true }

func (s *BearerSource) Header(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.token != "" && s.now().Before(s.expiresAt) {
		token := s.token
		s.mu.Unlock()
		return "Bearer " + token, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

func (s *BearerSource) Refresh(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     s.clientID,
		"client_secret": s.clientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &contractx.CredentialError{Upstream: s.upstream, Status: resp.StatusCode}
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &grant); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if grant.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	lifetime := time.Duration(grant.ExpiresIn) * time.Second

	s.mu.Lock()
	s.token = grant.AccessToken
	s.expiresAt = s.now().Add(lifetime - expiryMargin)
	s.mu.Unlock()

	return "Bearer " + grant.AccessToken, nil
}

// BasicSource is a static API key presented as Basic auth. The header is
// base64(key + ":") computed once; there is no refresh path.
type BasicSource struct {
	header string
}

func NewBasicSource(apiKey string) (*BasicSource, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errors.New("api key is required")
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(key + ":"))
	return &BasicSource{header: "Basic " + encoded}, nil
}

func (s *BasicSource) CanRefresh() bool { return false }

func (s *BasicSource) Header(ctx context.Context) (string, error) {
	return s.header, nil
}

func (s *BasicSource) Refresh(ctx context.Context) (string, error) {
	return "", errors.New("basic credential cannot be refreshed")
}
