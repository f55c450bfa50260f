package source

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

// Overview is what the dashboard header shows: catalog statistics, score
// metrics and the category table.
type Overview struct {
	Statistics *catalog.Statistics
	Metrics    *catalog.EfficiencyMetrics
	Categories *catalog.Table
}

// LoadOverview fetches the three panels concurrently. Panels are
// independent, so one failing does not hide the others; the first error is
// returned alongside whatever did load.
func LoadOverview(ctx context.Context, b Backend) (*Overview, error) {
	var ov Overview
	var g errgroup.Group
	g.Go(func() (err error) {
		ov.Statistics, err = b.Statistics(ctx)
		return err
	})
	g.Go(func() (err error) {
		ov.Metrics, err = b.Metrics(ctx)
		return err
	})
	g.Go(func() (err error) {
		ov.Categories, err = b.Categories(ctx)
		return err
	})
	err := g.Wait()
	if ov.Categories == nil {
		ov.Categories = catalog.DefaultTable()
	}
	return &ov, err
}
