package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type memTokens struct {
	mu      sync.Mutex
	tok     string
	cleared int
}

func (m *memTokens) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok, nil
}

func (m *memTokens) SetToken(t string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = t
	return nil
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = ""
	m.cleared++
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenStore) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, NewHTTPClient(5*time.Second, tokens))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestTransport_AttachesBearerWhenTokenPresent(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, map[string]any{"id": "u1", "username": "ada", "email": "ada@example.com", "is_active": true})
	}, &memTokens{tok: "abc"})

	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if got != "Bearer abc" {
		t.Fatalf("Authorization = %q", got)
	}
	if u.Username != "ada" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestTransport_SkipsHeaderWithoutToken(t *testing.T) {
	var present bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		writeJSON(w, map[string]any{"items": []any{}, "total": 0, "page": 1, "page_size": 20})
	}, &memTokens{})

	if _, err := c.ListModels(context.Background(), nil); err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if present {
		t.Fatalf("expected no Authorization header")
	}
}

func TestTransport_ReadsStoreOnEveryRequest(t *testing.T) {
	var headers []string
	tokens := &memTokens{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		writeJSON(w, []string{})
	}, tokens)

	_, _ = c.Architectures(context.Background())
	_ = tokens.SetToken("later")
	_, _ = c.Architectures(context.Background())

	if len(headers) != 2 || headers[0] != "" || headers[1] != "Bearer later" {
		t.Fatalf("unexpected headers %q", headers)
	}
}

func TestUnauthorized_ClearsTokenAndWraps(t *testing.T) {
	tokens := &memTokens{tok: "expired"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]string{"detail": "Could not validate credentials"})
	}, tokens)

	_, err := c.Me(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected errors.Is ErrUnauthorized")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Detail != "Could not validate credentials" {
		t.Fatalf("expected detail to be parsed, got %v", err)
	}
	if tok, _ := tokens.Token(); tok != "" || tokens.cleared != 1 {
		t.Fatalf("token should be cleared once, tok=%q cleared=%d", tok, tokens.cleared)
	}
}

func TestStatusErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"detail": "Model not found"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}, nil)

	_, err := c.Model(context.Background(), "missing")
	if !IsNotFound(err) || IsUnauthorized(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = c.Statistics(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != 500 || se.Detail != "boom" {
		t.Fatalf("expected 500 with raw detail, got %v", err)
	}
	if IsNotFound(err) || IsUnauthorized(err) {
		t.Fatalf("500 must not be classified as 404/401")
	}
}

func TestTransportError_IsWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	c := New("http://carbonscope.invalid", &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	})})

	_, err := c.Ranking(context.Background(), 5)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if IsUnauthorized(err) {
		t.Fatalf("transport error must not look like 401")
	}
}

func TestListModels_SendsQueryVerbatim(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		writeJSON(w, map[string]any{
			"items": []map[string]any{
				{"id": "1", "model_name": "GPT-4", "parameters_billions": 1000, "architecture": "Transformer",
					"model_type": "chat", "training_co2_kg": 5000, "overall_score": 90, "cloud_provider": "Azure"},
			},
			"total": 41, "page": 3, "page_size": 20, "total_pages": 3,
		})
	}, nil)

	q := url.Values{"min_parameters": {"50"}, "sort_by": {"model_name"}, "sort_order": {"asc"}, "page": {"3"}, "page_size": {"20"}}
	page, err := c.ListModels(context.Background(), q)
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if gotPath != "/api/v1/models/" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotQuery.Get("min_parameters") != "50" || gotQuery.Get("page") != "3" {
		t.Fatalf("query = %v", gotQuery)
	}
	if page.Total != 41 || page.Page != 3 || len(page.Items) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Cloud() != "Azure" {
		t.Fatalf("cloud provider not decoded: %+v", page.Items[0])
	}
}

func TestLogin_FormEncoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content-type = %q", ct)
		}
		_ = r.ParseForm()
		if r.PostForm.Get("username") != "ada" || r.PostForm.Get("password") != "s3cret" {
			t.Errorf("form = %v", r.PostForm)
		}
		writeJSON(w, map[string]string{"access_token": "tok", "token_type": "bearer"})
	}, nil)

	tok, err := c.Login(context.Background(), "ada", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok.AccessToken != "tok" || tok.TokenType != "bearer" {
		t.Fatalf("unexpected token %+v", tok)
	}
}

func TestRegister_JSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body Registration
		b, _ := io.ReadAll(r.Body)
		if err := json.NewDecoder(bytes.NewReader(b)).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Email != "ada@example.com" {
			t.Errorf("body = %s", b)
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"id": "7", "username": body.Username, "email": body.Email, "is_active": true})
	}, nil)

	u, err := c.Register(context.Background(), Registration{Username: "ada", Email: "ada@example.com", Password: "x"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID != "7" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestScores(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/carbon-scores/ranking":
			if r.URL.Query().Get("limit") != "2" {
				t.Errorf("limit = %q", r.URL.Query().Get("limit"))
			}
			writeJSON(w, []map[string]any{
				{"model_id": "1", "model_name": "GPT-4", "carbon_score": 95, "category": "A+"},
				{"model_id": "8", "model_name": "Phi-2", "carbon_score": 90, "category": "A+"},
			})
		case "/api/v1/carbon-scores/categories":
			writeJSON(w, map[string]any{
				"A": map[string]any{"min_score": 80, "color": "#66bd63"},
				"B": map[string]any{"min_score": 70, "color": "#a6d96a"},
			})
		case "/api/v1/carbon-scores/efficiency-metrics":
			writeJSON(w, map[string]any{"average_score": 70, "total_models": 3, "category_distribution": map[string]int{"A": 1}})
		case "/api/v1/carbon-scores/recommendations/3":
			writeJSON(w, []map[string]any{{"original_model_id": "3", "recommended_model_id": "6", "co2_savings_kg": 50, "recommendation_reason": "x"}})
		default:
			http.NotFound(w, r)
		}
	}, nil)
	ctx := context.Background()

	ranking, err := c.Ranking(ctx, 2)
	if err != nil || len(ranking) != 2 || ranking[1].ModelID != "8" {
		t.Fatalf("Ranking: %v %+v", err, ranking)
	}

	tbl, err := c.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if tbl.For(85).Label != "A" || tbl.For(5).Label != "F" {
		t.Fatalf("unexpected table %+v", tbl.Categories())
	}

	m, err := c.EfficiencyMetrics(ctx)
	if err != nil || m.TotalModels != 3 || m.CategoryDistribution["A"] != 1 {
		t.Fatalf("EfficiencyMetrics: %v %+v", err, m)
	}

	recs, err := c.Recommendations(ctx, "3", 3)
	if err != nil || len(recs) != 1 || recs[0].CO2SavingsKg != 50 {
		t.Fatalf("Recommendations: %v %+v", err, recs)
	}
}

func TestContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Statistics(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFavorites(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer on %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, []map[string]any{{"id": "3", "model_name": "Mistral-7B"}})
		default:
			writeJSON(w, map[string]any{"id": "1", "username": "ada", "favorites": []string{"3"}})
		}
	}, &memTokens{tok: "tok"})

	models, err := c.Favorites(context.Background())
	if err != nil || len(models) != 1 || models[0].Name != "Mistral-7B" {
		t.Fatalf("Favorites = %+v, %v", models, err)
	}
	u, err := c.AddFavorite(context.Background(), "3")
	if err != nil || len(u.Favorites) != 1 {
		t.Fatalf("AddFavorite = %+v, %v", u, err)
	}
	if _, err := c.RemoveFavorite(context.Background(), "a/b"); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	want := []string{
		"GET /api/v1/auth/me/favorites",
		"POST /api/v1/auth/me/favorites/3",
		"DELETE /api/v1/auth/me/favorites/a/b",
	}
	if strings.Join(calls, "\n") != strings.Join(want, "\n") {
		t.Fatalf("calls:\n%s", strings.Join(calls, "\n"))
	}
}
