package contract

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrCredential        = errors.New("credential unavailable")
	ErrCredentialExpired = errors.New("credential expired and refresh failed")
	ErrUpstream          = errors.New("upstream request failed")
)

// CredentialError reports that an upstream refused to issue a credential.
// Fatal for the calling operation; never retried.
type CredentialError struct {
	Upstream string
	Status   int
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: credential grant refused (status %d)", e.Upstream, e.Status)
}

func (e *CredentialError) Unwrap() error { return ErrCredential }

// CredentialExpiredError reports a 401 that persisted because the refresh
// attempt itself failed. Distinct from a generic transport failure so the
// operator knows the stored client credentials are the problem.
type CredentialExpiredError struct {
	Upstream string
	Cause    error
}

func (e *CredentialExpiredError) Error() string {
	return fmt.Sprintf("%s: token expired and refresh failed: %v", e.Upstream, e.Cause)
}

func (e *CredentialExpiredError) Unwrap() error { return ErrCredentialExpired }

// UpstreamError carries the upstream diagnostics for a non-2xx response or
// an unparsable body.
type UpstreamError struct {
	Upstream   string
	Status     int
	StatusText string
	Body       string
	Reason     string
}

func (e *UpstreamError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Upstream, e.Reason)
	}
	return fmt.Sprintf("%s: %d %s: %s", e.Upstream, e.Status, e.StatusText, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }
