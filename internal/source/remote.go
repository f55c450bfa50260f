package source

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
)

// Remote reads everything from the backend, one request per call.
type Remote struct {
	Client *api.Client
}

// NewRemote returns a server-delegated backend.
func NewRemote(c *api.Client) *Remote { return &Remote{Client: c} }

// Models sends the state as a query and returns the server's page as is.
func (r *Remote) Models(ctx context.Context, st *query.State) (query.Page[catalog.Model], error) {
	logf("models", "fetch %s", st)
	p, err := r.Client.ListModels(ctx, st.Encode())
	if err != nil {
		return query.Page[catalog.Model]{}, fmt.Errorf("could not load models: %w", err)
	}
	out := query.Page[catalog.Model]{Items: p.Items, Total: p.Total, Page: p.Page, PageSize: p.PageSize}
	if out.Page == 0 {
		out.Page = st.Page
	}
	if out.PageSize == 0 {
		out.PageSize = st.PageSize
	}
	if p.Total == 0 && unfiltered(st) {
		return out, ErrNoData
	}
	return out, nil
}

func (r *Remote) Model(ctx context.Context, id string) (*catalog.Model, error) {
	m, err := r.Client.Model(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not load model %s: %w", id, err)
	}
	return m, nil
}

// FilterOptions queries the three unfiltered metadata endpoints in parallel.
func (r *Remote) FilterOptions(ctx context.Context) (catalog.FilterOptions, error) {
	var out catalog.FilterOptions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Architectures, err = r.Client.Architectures(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.ModelTypes, err = r.Client.ModelTypes(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.CloudProviders, err = r.Client.CloudProviders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return catalog.FilterOptions{}, fmt.Errorf("could not load filter options: %w", err)
	}
	return out, nil
}

func (r *Remote) Statistics(ctx context.Context) (*catalog.Statistics, error) {
	s, err := r.Client.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load statistics: %w", err)
	}
	return s, nil
}

func (r *Remote) Ranking(ctx context.Context, limit int) ([]catalog.CarbonScore, error) {
	out, err := r.Client.Ranking(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not load ranking: %w", err)
	}
	noteCut(limit, len(out))
	if len(out) == 0 {
		return out, ErrNoData
	}
	return out, nil
}

// Scores filters the full ranking in memory. The ranking endpoint serves no
// model metrics, so rows are joined with the model list first.
func (r *Remote) Scores(ctx context.Context, st *query.State) (query.Page[catalog.CarbonScore], error) {
	all, err := r.Client.Ranking(ctx, RankAll)
	if err != nil {
		return query.Page[catalog.CarbonScore]{}, fmt.Errorf("could not load scores: %w", err)
	}
	noteCut(RankAll, len(all))
	if all, err = joinModels(ctx, r, all); err != nil {
		return query.Page[catalog.CarbonScore]{}, err
	}
	return scoresPage(all, st)
}

func (r *Remote) Categories(ctx context.Context) (*catalog.Table, error) {
	t, err := r.Client.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load categories: %w", err)
	}
	return t, nil
}

func (r *Remote) Metrics(ctx context.Context) (*catalog.EfficiencyMetrics, error) {
	m, err := r.Client.EfficiencyMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load efficiency metrics: %w", err)
	}
	return m, nil
}

func (r *Remote) Recommendations(ctx context.Context, modelID string, limit int) ([]catalog.Recommendation, error) {
	out, err := r.Client.Recommendations(ctx, modelID, limit)
	if err != nil {
		return nil, fmt.Errorf("could not load recommendations: %w", err)
	}
	return out, nil
}

// Regions prefers the backend's table and falls back to the built-in one.
// A 401 is not papered over.
func (r *Remote) Regions(ctx context.Context) ([]catalog.Region, error) {
	out, err := r.Client.Regions(ctx)
	if err == nil && len(out) > 0 {
		return out, nil
	}
	if api.IsUnauthorized(err) || ctx.Err() != nil {
		return nil, fmt.Errorf("could not load regions: %w", err)
	}
	logf("regions", "using built-in regions (%v)", err)
	return catalog.DefaultRegions(), nil
}
