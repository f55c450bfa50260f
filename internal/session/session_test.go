package session

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

type fakeAuth struct {
	loginErr error
	meErr    error
	regErr   error
	token    string
	meCalls  int
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (*api.Token, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	tok := f.token
	if tok == "" {
		tok = "tok-" + username
	}
	return &api.Token{AccessToken: tok, TokenType: "bearer"}, nil
}

func (f *fakeAuth) Me(context.Context) (*catalog.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &catalog.User{ID: "1", Username: "ada", Email: "ada@example.com", IsActive: true}, nil
}

func (f *fakeAuth) Register(_ context.Context, r api.Registration) (*catalog.User, error) {
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &catalog.User{ID: "2", Username: r.Username, Email: r.Email}, nil
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	s := NewFileTokenStore(path)

	if tok, err := s.Token(); err != nil || tok != "" {
		t.Fatalf("missing file should mean no token, got %q %v", tok, err)
	}
	if err := s.SetToken("abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), TokenKey+": abc") {
		t.Fatalf("unexpected file content %q", data)
	}

	// a fresh store over the same file sees the token
	if tok, _ := NewFileTokenStore(path).Token(); tok != "abc" {
		t.Fatalf("token = %q", tok)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear should be a no-op, got %v", err)
	}
	if tok, _ := s.Token(); tok != "" {
		t.Fatalf("token after clear = %q", tok)
	}
}

func TestFileTokenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := os.WriteFile(path, []byte("- a\n- b\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileTokenStore(path)
	if _, err := s.Token(); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := s.SetToken("fresh"); err != nil {
		t.Fatalf("SetToken should replace a corrupt file: %v", err)
	}
	if tok, _ := s.Token(); tok != "fresh" {
		t.Fatalf("token = %q", tok)
	}
}

func TestRestore(t *testing.T) {
	t.Run("no token is anonymous without a request", func(t *testing.T) {
		auth := &fakeAuth{}
		m := NewManager(auth, &MemoryTokenStore{})
		if err := m.Restore(context.Background()); err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if m.State() != Anonymous || auth.meCalls != 0 {
			t.Fatalf("state=%s meCalls=%d", m.State(), auth.meCalls)
		}
	})

	t.Run("valid token authenticates", func(t *testing.T) {
		tokens := &MemoryTokenStore{}
		_ = tokens.SetToken("abc")
		m := NewManager(&fakeAuth{}, tokens)
		if err := m.Restore(context.Background()); err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if m.State() != Authenticated || m.User().Username != "ada" {
			t.Fatalf("state=%s user=%+v", m.State(), m.User())
		}
	})

	failures := map[string]error{
		"401":       &api.StatusError{StatusCode: http.StatusUnauthorized},
		"500":       &api.StatusError{StatusCode: http.StatusInternalServerError},
		"transport": errors.New("connection refused"),
	}
	for name, meErr := range failures {
		t.Run("whoami failure "+name+" clears token", func(t *testing.T) {
			tokens := &MemoryTokenStore{}
			_ = tokens.SetToken("abc")
			m := NewManager(&fakeAuth{meErr: meErr}, tokens)

			err := m.Restore(context.Background())
			if !errors.Is(err, meErr) {
				t.Fatalf("expected wrapped %v, got %v", meErr, err)
			}
			if m.State() != Anonymous {
				t.Fatalf("state = %s, want anonymous", m.State())
			}
			if m.User() != nil {
				t.Fatalf("user should be nil")
			}
			if tok, _ := tokens.Token(); tok != "" {
				t.Fatalf("token should be removed, got %q", tok)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("stores token and loads profile", func(t *testing.T) {
		tokens := &MemoryTokenStore{}
		m := NewManager(&fakeAuth{token: "xyz"}, tokens)
		u, err := m.Login(context.Background(), " ada ", "pw")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if u.Username != "ada" || m.State() != Authenticated {
			t.Fatalf("user=%+v state=%s", u, m.State())
		}
		if tok, _ := tokens.Token(); tok != "xyz" {
			t.Fatalf("token = %q", tok)
		}
	})

	t.Run("missing credentials are a user error before any request", func(t *testing.T) {
		auth := &fakeAuth{}
		m := NewManager(auth, &MemoryTokenStore{})
		if _, err := m.Login(context.Background(), "", "pw"); !apperr.IsUser(err) {
			t.Fatalf("expected user error, got %v", err)
		}
		if auth.meCalls != 0 {
			t.Fatalf("no request expected")
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		m := NewManager(&fakeAuth{loginErr: &api.StatusError{StatusCode: http.StatusUnauthorized}}, &MemoryTokenStore{})
		_, err := m.Login(context.Background(), "ada", "wrong")
		if !apperr.IsUser(err) || m.State() != Anonymous {
			t.Fatalf("err=%v state=%s", err, m.State())
		}
	})

	t.Run("profile failure drops the fresh token", func(t *testing.T) {
		tokens := &MemoryTokenStore{}
		m := NewManager(&fakeAuth{meErr: errors.New("down")}, tokens)
		if _, err := m.Login(context.Background(), "ada", "pw"); err == nil {
			t.Fatalf("expected error")
		}
		if tok, _ := tokens.Token(); tok != "" || m.State() != Anonymous {
			t.Fatalf("tok=%q state=%s", tok, m.State())
		}
	})
}

func TestRegister(t *testing.T) {
	m := NewManager(&fakeAuth{}, &MemoryTokenStore{})
	if _, err := m.Register(context.Background(), api.Registration{Username: "ada", Email: "nope", Password: "longenough"}); !apperr.IsUser(err) {
		t.Fatalf("expected email validation error, got %v", err)
	}
	if _, err := m.Register(context.Background(), api.Registration{Username: "ada", Email: "a@b.c", Password: "short"}); !apperr.IsUser(err) {
		t.Fatalf("expected password validation error, got %v", err)
	}
	u, err := m.Register(context.Background(), api.Registration{Username: "ada", Email: "a@b.c", Password: "longenough"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if m.State() != Authenticated || u.Username != "ada" {
		t.Fatalf("state=%s user=%+v", m.State(), u)
	}
}

func TestLogout_NoRoundTrip(t *testing.T) {
	auth := &fakeAuth{}
	tokens := &MemoryTokenStore{}
	m := NewManager(auth, tokens)
	if _, err := m.Login(context.Background(), "ada", "pw"); err != nil {
		t.Fatal(err)
	}
	calls := auth.meCalls

	if err := m.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if auth.meCalls != calls {
		t.Fatalf("logout must not contact the backend")
	}
	if tok, _ := tokens.Token(); tok != "" || m.User() != nil || m.State() != Anonymous {
		t.Fatalf("session not cleared")
	}
	if _, err := m.Require(); !apperr.IsUser(err) {
		t.Fatalf("Require after logout should be a user error, got %v", err)
	}
}

func TestObserve_DropsUserOn401(t *testing.T) {
	m := NewManager(&fakeAuth{}, &MemoryTokenStore{})
	_, _ = m.Login(context.Background(), "ada", "pw")

	if err := m.Observe(errors.New("other")); err == nil || m.State() != Authenticated {
		t.Fatalf("non-401 errors must pass through untouched")
	}
	err := m.Observe(&api.StatusError{StatusCode: http.StatusUnauthorized})
	if !api.IsUnauthorized(err) || m.State() != Anonymous || m.User() != nil {
		t.Fatalf("err=%v state=%s", err, m.State())
	}
}

func TestOfflineAuth(t *testing.T) {
	tokens := &MemoryTokenStore{}
	m := NewManager(&OfflineAuth{Tokens: tokens}, tokens)
	u, err := m.Login(context.Background(), "grace", "anything")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Username != "grace" {
		t.Fatalf("user = %+v", u)
	}

	// a token from a real backend is not accepted offline
	_ = tokens.SetToken("jwt-from-server")
	if err := m.Restore(context.Background()); !api.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if m.State() != Anonymous {
		t.Fatalf("state = %s", m.State())
	}
}
