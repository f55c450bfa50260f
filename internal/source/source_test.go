package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, h http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return api.New(srv.URL, srv.Client())
}

type emptyLoader struct{}

func (emptyLoader) Load(context.Context) (*Dataset, error) { return &Dataset{}, nil }

type failingLoader struct{ calls int }

func (f *failingLoader) Load(context.Context) (*Dataset, error) {
	f.calls++
	return nil, errors.New("backend down")
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeServer, "server": ModeServer, "client": ModeClient} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("hybrid"); !apperr.IsUser(err) {
		t.Fatalf("expected user error, got %v", err)
	}
}

func TestLocal_Models(t *testing.T) {
	l := NewLocal(FixtureLoader{})
	st := catalog.ModelSpec.NewState()

	all, err := l.Models(context.Background(), st)
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if all.Total != 8 || len(all.Items) != 8 {
		t.Fatalf("expected all fixtures, got %d/%d", len(all.Items), all.Total)
	}

	_ = st.Set("minParams", "50")
	big, err := l.Models(context.Background(), st)
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if big.Total != 4 {
		t.Fatalf("expected 4 models >= 50B, got %d", big.Total)
	}

	_ = st.Set("minParams", "5000")
	none, err := l.Models(context.Background(), st)
	if err != nil {
		t.Fatalf("no matches is not an error, got %v", err)
	}
	if none.Total != 0 || len(none.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", none)
	}
}

func TestLocal_EmptyCollectionIsNoData(t *testing.T) {
	l := NewLocal(emptyLoader{})
	_, err := l.Models(context.Background(), catalog.ModelSpec.NewState())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := l.Ranking(context.Background(), 5); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for ranking, got %v", err)
	}
}

func TestLocal_LoadFailureIsRetried(t *testing.T) {
	f := &failingLoader{}
	l := NewLocal(f)
	for range 2 {
		if _, err := l.Models(context.Background(), catalog.ModelSpec.NewState()); err == nil {
			t.Fatalf("expected error")
		}
	}
	if f.calls != 2 {
		t.Fatalf("failed loads must not be cached, calls=%d", f.calls)
	}
}

func TestLocal_FilterOptionsIgnorePaging(t *testing.T) {
	l := NewLocal(FixtureLoader{})
	st := catalog.ModelSpec.NewState()
	_ = st.SetPageSize(10)
	_ = st.Set("architecture", "Transformer")
	if _, err := l.Models(context.Background(), st); err != nil {
		t.Fatal(err)
	}

	opts, err := l.FilterOptions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Architectures) != 7 {
		t.Fatalf("options must come from the full set, got %v", opts.Architectures)
	}
}

func TestLocal_RankingAndRecommendations(t *testing.T) {
	l := NewLocal(FixtureLoader{})
	top, err := l.Ranking(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, s := range top {
		names = append(names, s.ModelName)
	}
	if diff := cmp.Diff([]string{"GPT-4", "Phi-2", "LLaMA-3"}, names); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}

	recs, err := l.Recommendations(context.Background(), "7", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].RecommendedModelName != "GPT-4" {
		t.Fatalf("unexpected recommendations %+v", recs)
	}

	if _, err := l.Model(context.Background(), "404"); !api.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemote_ModelsVerbatim(t *testing.T) {
	var gotQuery string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		// the server ignores the filter on purpose; the client must not re-filter
		writeJSON(w, map[string]any{
			"items": []catalog.Model{{ID: "8", Name: "Phi-2", ParametersBillions: 2.7}},
			"total": 33, "page": 2, "page_size": 10, "total_pages": 4,
		})
	})
	r := NewRemote(c)
	st := catalog.ModelSpec.NewState()
	_ = st.Set("minParams", "50")
	_ = st.SetPageSize(10)
	st.SetPage(2)

	page, err := r.Models(context.Background(), st)
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if page.Total != 33 || page.Page != 2 || page.PageCount() != 4 {
		t.Fatalf("unexpected page meta %+v", page)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "Phi-2" {
		t.Fatalf("items must be returned verbatim, got %+v", page.Items)
	}
	if gotQuery == "" {
		t.Fatalf("expected encoded query")
	}
}

func TestRemote_EmptyUnfilteredIsNoData(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []any{}, "total": 0, "page": 1, "page_size": 20})
	})
	r := NewRemote(c)

	st := catalog.ModelSpec.NewState()
	if _, err := r.Models(context.Background(), st); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	st.SetSearch("zzz")
	if _, err := r.Models(context.Background(), st); err != nil {
		t.Fatalf("filtered empty result is not an error, got %v", err)
	}
}

func TestRemote_FilterOptionsFromMetadataEndpoints(t *testing.T) {
	var listCalls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/models/architectures":
			writeJSON(w, []string{"A", "B"})
		case "/api/v1/models/model-types":
			writeJSON(w, []string{"chat"})
		case "/api/v1/models/cloud-providers":
			writeJSON(w, []string{"AWS"})
		default:
			listCalls.Add(1)
			http.NotFound(w, r)
		}
	})
	opts, err := NewRemote(c).FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("FilterOptions: %v", err)
	}
	want := catalog.FilterOptions{Architectures: []string{"A", "B"}, ModelTypes: []string{"chat"}, CloudProviders: []string{"AWS"}}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if listCalls.Load() != 0 {
		t.Fatalf("options must not be derived from a list page")
	}
}

// scoreServer serves a paginated model list and a ranking in the backend's
// shape, which carries no model metrics.
func scoreServer(t *testing.T, models []catalog.Model, ranking []map[string]any) (*api.Client, *atomic.Int32) {
	t.Helper()
	var listCalls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/models/":
			listCalls.Add(1)
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
			items := []catalog.Model{}
			for i := (page - 1) * size; i < min(page*size, len(models)); i++ {
				items = append(items, models[i])
			}
			writeJSON(w, map[string]any{"items": items, "total": len(models), "page": page, "page_size": size})
		case "/api/v1/carbon-scores/ranking":
			writeJSON(w, ranking)
		default:
			http.NotFound(w, r)
		}
	})
	return c, &listCalls
}

var bareRanking = []map[string]any{
	{"model_id": "1", "model_name": "GPT-4", "carbon_score": 95, "category": "A+", "efficiency_ratio": 0.018, "rank_percentile": 100},
	{"model_id": "2", "model_name": "TinyLM", "carbon_score": 40, "category": "D", "efficiency_ratio": 0.05, "rank_percentile": 50},
}

var joinModelsFixture = []catalog.Model{
	{ID: "1", Name: "GPT-4", ParametersBillions: 1000, TrainingCO2Kg: 5000, OverallScore: 90, Architecture: "Transformer"},
	{ID: "2", Name: "TinyLM", ParametersBillions: 0.5, TrainingCO2Kg: 12, OverallScore: 40, Architecture: "LlamaForCausalLM"},
}

func TestRemote_ScoresFilterOnJoinedModelMetrics(t *testing.T) {
	c, _ := scoreServer(t, joinModelsFixture, bareRanking)
	r := NewRemote(c)

	tests := []struct {
		param, value string
		want         []string
	}{
		{"minParams", "1", []string{"GPT-4"}},
		{"maxParams", "1", []string{"TinyLM"}},
		{"minCO2", "100", []string{"GPT-4"}},
		{"maxCO2", "1000000", []string{"GPT-4", "TinyLM"}},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			st := catalog.ScoreSpec.NewState()
			_ = st.SetSort(catalog.FieldCarbonScore, query.Descending)
			if err := st.Set(tt.param, tt.value); err != nil {
				t.Fatal(err)
			}
			page, err := r.Scores(context.Background(), st)
			if err != nil {
				t.Fatalf("Scores: %v", err)
			}
			var got []string
			for _, s := range page.Items {
				got = append(got, s.ModelName)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("scores mismatch (-want +got):\n%s", diff)
			}
			if page.Total != len(tt.want) {
				t.Fatalf("total = %d, want %d", page.Total, len(tt.want))
			}
		})
	}
}

func TestJoinedRanking(t *testing.T) {
	c, listCalls := scoreServer(t, joinModelsFixture, bareRanking)
	all, err := JoinedRanking(context.Background(), NewRemote(c))
	if err != nil {
		t.Fatalf("JoinedRanking: %v", err)
	}
	if len(all) != 2 || all[0].Architecture != "Transformer" || all[1].Architecture != "LlamaForCausalLM" {
		t.Fatalf("architectures not joined: %+v", all)
	}
	if listCalls.Load() == 0 {
		t.Fatalf("expected the model list to be walked")
	}

	// fixture rows are already joined, so no model walk happens
	local, err := JoinedRanking(context.Background(), NewLocal(FixtureLoader{}))
	if err != nil || len(local) != 8 || !local[0].Joined() {
		t.Fatalf("local ranking: %d rows, %v", len(local), err)
	}
}

func TestRanking_LogsCutAtRankAll(t *testing.T) {
	full := make([]map[string]any, RankAll)
	for i := range full {
		full[i] = map[string]any{"model_id": strconv.Itoa(i), "model_name": fmt.Sprintf("m%04d", i), "carbon_score": 50, "category": "C"}
	}
	c, _ := scoreServer(t, nil, full)

	var buf bytes.Buffer
	SetLogger(&buf)
	t.Cleanup(func() { SetLogger(nil) })

	if _, err := NewRemote(c).Ranking(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("a short limit is not a cut, logged %q", buf.String())
	}
	out, err := NewRemote(c).Ranking(context.Background(), RankAll)
	if err != nil || len(out) != RankAll {
		t.Fatalf("Ranking: %d rows, %v", len(out), err)
	}
	if !strings.Contains(buf.String(), "ranking cut at 1000 rows") {
		t.Fatalf("expected a cut log, got %q", buf.String())
	}
}

func TestAllModels_WalksEveryPage(t *testing.T) {
	models := make([]catalog.Model, 230)
	for i := range models {
		models[i] = catalog.Model{ID: strconv.Itoa(i), Name: fmt.Sprintf("m%03d", i)}
	}
	c, listCalls := scoreServer(t, models, nil)

	got, err := AllModels(context.Background(), NewRemote(c), catalog.ModelSpec.NewState())
	if err != nil {
		t.Fatalf("AllModels: %v", err)
	}
	if len(got) != 230 || got[229].ID != "229" {
		t.Fatalf("expected 230 models in order, got %d", len(got))
	}
	if listCalls.Load() != 3 {
		t.Fatalf("expected 3 page requests, got %d", listCalls.Load())
	}
}

func TestRemote_RegionsFallBack(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	regions, err := NewRemote(c).Regions(context.Background())
	if err != nil {
		t.Fatalf("Regions: %v", err)
	}
	if len(regions) != 6 {
		t.Fatalf("expected built-in regions, got %d", len(regions))
	}
}

func TestAPILoader_WalksAllPages(t *testing.T) {
	const total = 250
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/models/":
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
			items := []catalog.Model{}
			for i := (page - 1) * size; i < min(page*size, total); i++ {
				items = append(items, catalog.Model{ID: strconv.Itoa(i), Name: fmt.Sprintf("m%03d", i)})
			}
			writeJSON(w, map[string]any{"items": items, "total": total, "page": page, "page_size": size, "total_pages": 3})
		case "/api/v1/carbon-scores/ranking":
			writeJSON(w, []catalog.CarbonScore{{ModelID: "0", ModelName: "m000", CarbonScore: 50, Category: "C"}})
		default:
			http.NotFound(w, r)
		}
	})

	ds, err := (&APILoader{Client: c, Concurrency: 2}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Models) != total {
		t.Fatalf("expected %d models, got %d", total, len(ds.Models))
	}
	for i, m := range ds.Models {
		if m.ID != strconv.Itoa(i) {
			t.Fatalf("pages out of order at %d: %s", i, m.ID)
		}
	}
	if len(ds.Scores) != 1 {
		t.Fatalf("expected ranking to load, got %d", len(ds.Scores))
	}
	if !ds.Scores[0].Joined() {
		t.Fatalf("ranking rows should carry their model metrics: %+v", ds.Scores[0])
	}
}

func TestLoadOverview(t *testing.T) {
	ov, err := LoadOverview(context.Background(), NewLocal(FixtureLoader{}))
	if err != nil {
		t.Fatal(err)
	}
	if ov.Statistics.TotalModels != 8 || ov.Metrics.TotalModels != 8 || len(ov.Categories.Categories()) != 7 {
		t.Fatalf("unexpected overview %+v", ov)
	}
}

func TestNew(t *testing.T) {
	c := api.New("http://localhost:0", nil)
	if _, ok := New(ModeServer, false, c).(*Remote); !ok {
		t.Fatalf("server mode should be remote")
	}
	if _, ok := New(ModeClient, false, c).(*Local); !ok {
		t.Fatalf("client mode should be local")
	}
	if _, ok := New(ModeServer, true, c).(*Local); !ok {
		t.Fatalf("dummy backend should be local")
	}
}
