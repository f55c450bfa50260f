package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

const offlinePrefix = "offline:"

// OfflineAuth accepts any credentials and issues a local token. It backs the
// dummy backend so the CLI is usable without a server.
type OfflineAuth struct {
	Tokens TokenStore
}

func (a *OfflineAuth) Login(_ context.Context, username, _ string) (*api.Token, error) {
	return &api.Token{AccessToken: offlinePrefix + username, TokenType: "bearer"}, nil
}

func (a *OfflineAuth) Me(_ context.Context) (*catalog.User, error) {
	tok, err := a.Tokens.Token()
	if err != nil {
		return nil, err
	}
	name, ok := strings.CutPrefix(tok, offlinePrefix)
	if !ok {
		return nil, &api.StatusError{StatusCode: http.StatusUnauthorized, Detail: "not an offline token"}
	}
	u := catalog.DummyUser(name)
	return &u, nil
}

func (a *OfflineAuth) Register(_ context.Context, r api.Registration) (*catalog.User, error) {
	u := catalog.DummyUser(r.Username)
	u.Email = r.Email
	if r.FullName != "" {
		u.FullName = r.FullName
	}
	return &u, nil
}
