package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

// State is where a Manager is in its lifecycle.
type State int

const (
	Unknown State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Authenticator is the backend side of the session. *api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*api.Token, error)
	Me(ctx context.Context) (*catalog.User, error)
	Register(ctx context.Context, r api.Registration) (*catalog.User, error)
}

// Manager owns the session of one process. It is created once by the root
// command and handed to whatever needs it.
type Manager struct {
	auth   Authenticator
	tokens TokenStore

	mu    sync.Mutex
	state State
	user  *catalog.User
}

// NewManager returns a Manager in the Unknown state.
func NewManager(auth Authenticator, tokens TokenStore) *Manager {
	return &Manager{auth: auth, tokens: tokens}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns the authenticated user, or nil.
func (m *Manager) User() *catalog.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) set(st State, u *catalog.User) {
	m.mu.Lock()
	m.state, m.user = st, u
	m.mu.Unlock()
}

// Restore silently resumes a stored session. With no token the session is
// Anonymous. With a token, /auth/me decides: success means Authenticated,
// any failure removes the token and leaves the session Anonymous. The
// returned error only explains a failed restore; the state is never left
// Loading.
func (m *Manager) Restore(ctx context.Context) error {
	m.set(Loading, nil)

	tok, err := m.tokens.Token()
	if err != nil {
		m.drop("(stored)")
		return fmt.Errorf("read stored token: %w", err)
	}
	if tok == "" {
		m.set(Anonymous, nil)
		return nil
	}

	u, err := m.auth.Me(ctx)
	if err != nil {
		m.drop("(stored)")
		return fmt.Errorf("restore session: %w", err)
	}
	m.set(Authenticated, u)
	logf(u.Username, "session restored")
	return nil
}

// drop clears the token and the user.
func (m *Manager) drop(who string) {
	if err := m.tokens.Clear(); err != nil {
		logf(who, "failed to clear token: %v", err)
	}
	m.set(Anonymous, nil)
}

// Login exchanges credentials for a token, stores it and loads the profile.
func (m *Manager) Login(ctx context.Context, username, password string) (*catalog.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.User("username and password are required")
	}
	m.set(Loading, nil)

	tok, err := m.auth.Login(ctx, username, password)
	if err != nil {
		m.set(Anonymous, nil)
		if api.IsUnauthorized(err) {
			return nil, apperr.User("incorrect username or password")
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := m.tokens.SetToken(tok.AccessToken); err != nil {
		m.set(Anonymous, nil)
		return nil, fmt.Errorf("store token: %w", err)
	}

	u, err := m.auth.Me(ctx)
	if err != nil {
		m.drop(username)
		return nil, fmt.Errorf("load profile: %w", err)
	}
	m.set(Authenticated, u)
	logf(u.Username, "logged in")
	return u, nil
}

// Register creates an account and logs into it.
func (m *Manager) Register(ctx context.Context, r api.Registration) (*catalog.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	switch {
	case r.Username == "":
		return nil, apperr.User("username is required")
	case !strings.Contains(r.Email, "@"):
		return nil, apperr.Userf("invalid email address %q", r.Email)
	case len(r.Password) < 8:
		return nil, apperr.User("password must be at least 8 characters")
	}
	if _, err := m.auth.Register(ctx, r); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	logf(r.Username, "account created")
	return m.Login(ctx, r.Username, r.Password)
}

// Logout forgets the token and the user without contacting the backend.
func (m *Manager) Logout() error {
	u := m.User()
	err := m.tokens.Clear()
	m.set(Anonymous, nil)
	if u != nil {
		logf(u.Username, "logged out")
	}
	return err
}

// Observe inspects the result of any authenticated request. A 401 has
// already cleared the token in the transport; Observe drops the user to
// match and turns the error into a prompt to log in again.
func (m *Manager) Observe(err error) error {
	if err == nil || !api.IsUnauthorized(err) {
		return err
	}
	m.set(Anonymous, nil)
	return fmt.Errorf("%w (session expired, run `carbonscope login`)", err)
}

// Require returns the current user or a UserError asking to log in.
func (m *Manager) Require() (*catalog.User, error) {
	if u := m.User(); u != nil && m.State() == Authenticated {
		return u, nil
	}
	return nil, apperr.User("not logged in (run `carbonscope login`)")
}
