package api

import (
	"net/http"
	"strings"
	"time"
)

// TokenStore persists the single bearer token.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// bearerTransport injects the stored token into every request and clears it
// when the backend answers 401. The store is read per request so that a
// login or logout in the same process takes effect immediately.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenStore
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil {
		if tok, err := t.tokens.Token(); err == nil && strings.TrimSpace(tok) != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(tok))
		}
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && t.tokens != nil {
		if cerr := t.tokens.Clear(); cerr != nil {
			logf(req.URL.Path, "failed to clear token after 401: %v", cerr)
		} else {
			logf(req.URL.Path, "401 received, token cleared")
		}
	}
	return resp, nil
}

// NewHTTPClient creates an *http.Client for the CarbonScope backend.
// timeout is the per-request deadline (0 = no timeout). tokens may be nil,
// in which case requests go out without an Authorization header.
func NewHTTPClient(timeout time.Duration, tokens TokenStore) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokens},
	}
}
