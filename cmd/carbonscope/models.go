package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
	"github.com/idlab-discover/carbonscope-cli/internal/source"
	"github.com/idlab-discover/carbonscope-cli/internal/ui"
)

var modelsCmd = &cobra.Command{
	Use:   "models [id]",
	Short: "List, filter and inspect models",
	Long: `List one page of the model catalog. Filters combine with AND; an empty
flag leaves that filter off. With an id, show that model and its carbon rating.`,
	Example: `  carbonscope models --architecture Transformer --min-params 7 --sort training_co2_kg --order desc
  carbonscope models 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	view := ui.NewModelsUI(a.out, a.quiet())
	if len(args) == 1 {
		return showModel(ctx, a, args[0])
	}

	st, err := stateFromFlags(catalog.ModelSpec.NewState(), "models", modelFilterFlags)
	if err != nil {
		return err
	}
	page, err := ui.Fetch(a.errOut, a.quiet(), "Loading models", func() (query.Page[catalog.Model], error) {
		return a.backend.Models(ctx, st)
	})
	if err != nil {
		view.PrintError(err)
		if errors.Is(err, source.ErrNoData) {
			return nil
		}
		return err
	}
	view.PrintPage(page, st)
	return nil
}

// showModel prints one model. The carbon rating is optional: a missing
// score only omits that section.
func showModel(ctx context.Context, a *app, id string) error {
	m, err := a.backend.Model(ctx, id)
	if api.IsNotFound(err) {
		return apperr.Userf("model %q not found", id)
	}
	if err != nil {
		return err
	}
	score := scoreFor(ctx, a.backend, id)
	table, err := a.backend.Categories(ctx)
	if err != nil {
		table = catalog.DefaultTable()
	}
	ui.NewModelsUI(a.out, a.quiet()).PrintDetail(*m, score, table)
	return nil
}

// scoreFor looks id up in the full ranking.
func scoreFor(ctx context.Context, b source.ScoreSource, id string) *catalog.CarbonScore {
	all, err := b.Ranking(ctx, source.RankAll)
	if err != nil {
		return nil
	}
	for i := range all {
		if all[i].ModelID == id {
			return &all[i]
		}
	}
	return nil
}

var modelsOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the values accepted by --architecture, --model-type and --cloud",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		opts, err := a.backend.FilterOptions(cmd.Context())
		if err != nil {
			return err
		}
		ui.PrintFilterOptions(a.out, opts)
		return nil
	},
}

var modelsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog-wide statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		s, err := ui.Fetch(a.errOut, a.quiet(), "Loading statistics", func() (*catalog.Statistics, error) {
			return a.backend.Statistics(cmd.Context())
		})
		if err != nil {
			if errors.Is(err, source.ErrNoData) {
				ui.NewModelsUI(a.out, a.quiet()).PrintError(err)
				return nil
			}
			return err
		}
		ui.NewStatisticsUI(a.out).Print(*s)
		return nil
	},
}

func init() {
	addQueryFlags(modelsCmd, "models", modelFilterFlags)
	modelsCmd.AddCommand(modelsOptionsCmd, modelsStatsCmd)
}
