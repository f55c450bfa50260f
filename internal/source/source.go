// Package source decides where the views get their records from.
//
// Two deployments exist and are never mixed within a view:
//
//   - Remote delegates filtering, sorting and pagination of the model list to
//     the backend and renders its page and total verbatim.
//   - Local loads the full candidate set once (from offline fixtures or by
//     walking every API page) and runs the query pipeline in memory.
//
// The carbon score table is small and ranked server-side, so both
// deployments load the full ranking and filter it in memory.
package source

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
)

// ErrNoData means the backing collection itself is empty, as opposed to a
// query that matches nothing.
var ErrNoData = errors.New("no data available")

// ModelSource serves the model list view.
type ModelSource interface {
	Models(ctx context.Context, st *query.State) (query.Page[catalog.Model], error)
	Model(ctx context.Context, id string) (*catalog.Model, error)
	FilterOptions(ctx context.Context) (catalog.FilterOptions, error)
	Statistics(ctx context.Context) (*catalog.Statistics, error)
}

// ScoreSource serves the carbon score views.
type ScoreSource interface {
	Ranking(ctx context.Context, limit int) ([]catalog.CarbonScore, error)
	Scores(ctx context.Context, st *query.State) (query.Page[catalog.CarbonScore], error)
	Categories(ctx context.Context) (*catalog.Table, error)
	Metrics(ctx context.Context) (*catalog.EfficiencyMetrics, error)
	Recommendations(ctx context.Context, modelID string, limit int) ([]catalog.Recommendation, error)
}

// RegionSource serves the simulator's region list.
type RegionSource interface {
	Regions(ctx context.Context) ([]catalog.Region, error)
}

// Backend is everything the CLI reads.
type Backend interface {
	ModelSource
	ScoreSource
	RegionSource
}

// Mode names a deployment.
type Mode string

const (
	ModeServer Mode = "server"
	ModeClient Mode = "client"
)

// RankAll is the ranking limit used to load every score. Rankings longer
// than this are cut, and the cut is logged.
const RankAll = 1000

// noteCut logs when a full-ranking request came back at the limit.
func noteCut(limit, n int) {
	if limit >= RankAll && n >= limit {
		logf("ranking", "ranking cut at %d rows, lower-ranked scores are left out", limit)
	}
}

// unfiltered reports whether st would return the whole collection.
func unfiltered(st *query.State) bool {
	return len(st.Active()) == 0 && st.Search == ""
}

// scoresPage applies st to a fully loaded ranking.
func scoresPage(all []catalog.CarbonScore, st *query.State) (query.Page[catalog.CarbonScore], error) {
	if len(all) == 0 {
		return query.Page[catalog.CarbonScore]{Page: st.Page, PageSize: st.PageSize}, ErrNoData
	}
	return catalog.ScoreSpec.Apply(all, st), nil
}

// AllModels walks every page of the model list in st's order, starting at
// the first page.
func AllModels(ctx context.Context, src ModelSource, st *query.State) ([]catalog.Model, error) {
	if err := st.SetPageSize(100); err != nil {
		return nil, err
	}
	var out []catalog.Model
	for {
		page, err := src.Models(ctx, st)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if !st.Next(page.Total) {
			return out, nil
		}
	}
}

// JoinedRanking returns the full ranking with every row's model metrics
// filled in.
func JoinedRanking(ctx context.Context, b Backend) ([]catalog.CarbonScore, error) {
	scores, err := b.Ranking(ctx, RankAll)
	if err != nil {
		return nil, err
	}
	return joinModels(ctx, b, scores)
}

// joinModels fetches the model list only when some row lacks its metrics.
func joinModels(ctx context.Context, src ModelSource, scores []catalog.CarbonScore) ([]catalog.CarbonScore, error) {
	if !slices.ContainsFunc(scores, func(s catalog.CarbonScore) bool { return !s.Joined() }) {
		return scores, nil
	}
	models, err := AllModels(ctx, src, catalog.ModelSpec.NewState())
	if errors.Is(err, ErrNoData) {
		return scores, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not join model metrics: %w", err)
	}
	logf("scores", "joined %d scores with %d models", len(scores), len(models))
	return catalog.JoinModels(scores, models), nil
}

// ParseMode validates a configured mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeServer:
		return ModeServer, nil
	case ModeClient:
		return ModeClient, nil
	default:
		return "", apperr.Userf("invalid data mode %q (expected server|client)", s)
	}
}

// New picks the backend for a deployment. The dummy backend is always
// client-side over the offline fixtures.
func New(mode Mode, dummy bool, c *api.Client) Backend {
	switch {
	case dummy:
		return NewLocal(FixtureLoader{})
	case mode == ModeClient:
		return NewLocal(&APILoader{Client: c})
	default:
		return NewRemote(c)
	}
}
