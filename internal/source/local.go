package source

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
)

// Dataset is the full candidate set of a client-side deployment.
type Dataset struct {
	Models []catalog.Model
	Scores []catalog.CarbonScore
}

// Loader produces the full dataset once.
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// FixtureLoader serves the offline fixtures.
type FixtureLoader struct{}

func (FixtureLoader) Load(context.Context) (*Dataset, error) {
	return &Dataset{Models: catalog.DummyModels(), Scores: catalog.DummyScores()}, nil
}

// APILoader walks every page of the model list and the full ranking.
type APILoader struct {
	Client *api.Client
	// Concurrency bounds parallel page requests (default 4).
	Concurrency int
}

func (l *APILoader) Load(ctx context.Context) (*Dataset, error) {
	first, err := l.Client.ListModels(ctx, pageQuery(1))
	if err != nil {
		return nil, fmt.Errorf("load models page 1: %w", err)
	}
	pages := max(first.TotalPages, query.PageCount(first.Total, api.MaxPageSize))
	logf("load", "%d models across %d pages", first.Total, pages)

	results := make([][]catalog.Model, max(pages, 1))
	results[0] = first.Items

	var scores []catalog.CarbonScore
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cmp.Or(l.Concurrency, 4))
	for p := 2; p <= pages; p++ {
		g.Go(func() error {
			page, err := l.Client.ListModels(gctx, pageQuery(p))
			if err != nil {
				return fmt.Errorf("load models page %d: %w", p, err)
			}
			results[p-1] = page.Items
			return nil
		})
	}
	g.Go(func() (err error) {
		scores, err = l.Client.Ranking(gctx, RankAll)
		if err != nil {
			return fmt.Errorf("load ranking: %w", err)
		}
		noteCut(RankAll, len(scores))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{}
	for _, items := range results {
		ds.Models = append(ds.Models, items...)
	}
	ds.Scores = catalog.JoinModels(scores, ds.Models)
	return ds, nil
}

func pageQuery(page int) url.Values {
	return url.Values{
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(api.MaxPageSize)},
	}
}

// Local answers every view from an in-memory dataset.
type Local struct {
	loader Loader

	mu sync.Mutex
	ds *Dataset
}

// NewLocal returns a client-side backend over loader. Nothing is loaded
// until the first call.
func NewLocal(loader Loader) *Local { return &Local{loader: loader} }

// dataset loads once. A failed load is retried on the next call.
func (l *Local) dataset(ctx context.Context) (*Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ds != nil {
		return l.ds, nil
	}
	ds, err := l.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load dataset: %w", err)
	}
	l.ds = ds
	return ds, nil
}

func (l *Local) Models(ctx context.Context, st *query.State) (query.Page[catalog.Model], error) {
	ds, err := l.dataset(ctx)
	if err != nil {
		return query.Page[catalog.Model]{}, err
	}
	if len(ds.Models) == 0 {
		return query.Page[catalog.Model]{Page: st.Page, PageSize: st.PageSize}, ErrNoData
	}
	logf("models", "apply %s", st)
	return catalog.ModelSpec.Apply(ds.Models, st), nil
}

func (l *Local) Model(ctx context.Context, id string) (*catalog.Model, error) {
	ds, err := l.dataset(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(ds.Models, func(m catalog.Model) bool { return m.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("model %s: %w", id, &api.StatusError{StatusCode: http.StatusNotFound, Detail: "model not found"})
	}
	m := ds.Models[i]
	return &m, nil
}

// FilterOptions are computed from the whole dataset so they do not shrink
// as the user pages through results.
func (l *Local) FilterOptions(ctx context.Context) (catalog.FilterOptions, error) {
	ds, err := l.dataset(ctx)
	if err != nil {
		return catalog.FilterOptions{}, err
	}
	return catalog.Options(ds.Models), nil
}

func (l *Local) Statistics(ctx context.Context) (*catalog.Statistics, error) {
	ds, err := l.dataset(ctx)
	if err != nil {
		return nil, err
	}
	s := catalog.Stats(ds.Models)
	return &s, nil
}

// Ranking orders by carbon score, best first.
func (l *Local) Ranking(ctx context.Context, limit int) ([]catalog.CarbonScore, error) {
	ds, err := l.dataset(ctx)
	if err != nil {
		return nil, err
	}
	if len(ds.Scores) == 0 {
		return nil, ErrNoData
	}
	out := slices.Clone(ds.Scores)
	slices.SortStableFunc(out, func(a, b catalog.CarbonScore) int { return cmp.Compare(b.CarbonScore, a.CarbonScore) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (l *Local) Scores(ctx context.Context, st *query.State) (query.Page[catalog.CarbonScore], error) {
	ds, err := l.dataset(ctx)
	if err != nil {
		return query.Page[catalog.CarbonScore]{}, err
	}
	return scoresPage(ds.Scores, st)
}

func (l *Local) Categories(context.Context) (*catalog.Table, error) {
	return catalog.DefaultTable(), nil
}

func (l *Local) Metrics(ctx context.Context) (*catalog.EfficiencyMetrics, error) {
	ds, err := l.dataset(ctx)
	if err != nil {
		return nil, err
	}
	m := catalog.Metrics(ds.Scores)
	return &m, nil
}

func (l *Local) Recommendations(ctx context.Context, modelID string, limit int) ([]catalog.Recommendation, error) {
	ds, err := l.dataset(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := catalog.Recommend(ds.Models, ds.Scores, modelID, limit)
	if err != nil {
		return nil, fmt.Errorf("could not load recommendations: %w", err)
	}
	return recs, nil
}

func (l *Local) Regions(context.Context) ([]catalog.Region, error) {
	return catalog.DefaultRegions(), nil
}
