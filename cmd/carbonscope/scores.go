package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
	"github.com/idlab-discover/carbonscope-cli/internal/source"
	"github.com/idlab-discover/carbonscope-cli/internal/ui"
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Browse carbon scores",
	Long:  "List the carbon score table with filters, sort and paging. Subcommands show the ranking, the category table, aggregate metrics and greener alternatives.",
	Example: `  carbonscope scores --category A --sort carbon_score --order desc
  carbonscope scores ranking --limit 5
  carbonscope scores recommend 7`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

// categoryTable returns the backend's category table, or the built-in one
// when it cannot be fetched.
func categoryTable(cmd *cobra.Command, a *app) *catalog.Table {
	t, err := a.backend.Categories(cmd.Context())
	if err != nil || t == nil {
		return catalog.DefaultTable()
	}
	return t
}

func runScores(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	st, err := stateFromFlags(catalog.ScoreSpec.NewState(), "scores", scoreFilterFlags)
	if err != nil {
		return err
	}
	view := ui.NewScoresUI(a.out, a.quiet(), categoryTable(cmd, a))
	page, err := ui.Fetch(a.errOut, a.quiet(), "Loading carbon scores", func() (query.Page[catalog.CarbonScore], error) {
		return a.backend.Scores(cmd.Context(), st)
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

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Show the greenest models first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		limit := viper.GetInt("ranking.limit")
		if limit <= 0 {
			return apperr.Userf("invalid --limit %d (must be > 0)", limit)
		}
		view := ui.NewScoresUI(a.out, a.quiet(), categoryTable(cmd, a))
		scores, err := ui.Fetch(a.errOut, a.quiet(), "Loading ranking", func() ([]catalog.CarbonScore, error) {
			return a.backend.Ranking(cmd.Context(), limit)
		})
		if err != nil {
			view.PrintError(err)
			if errors.Is(err, source.ErrNoData) {
				return nil
			}
			return err
		}
		view.PrintRanking(scores)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the carbon category table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		ui.NewCategoriesUI(a.out).PrintTable(categoryTable(cmd, a))
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show aggregate efficiency metrics and distributions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		ov, err := ui.Fetch(a.errOut, a.quiet(), "Loading metrics", func() (*source.Overview, error) {
			return source.LoadOverview(ctx, a.backend)
		})
		if ov == nil || ov.Metrics == nil {
			ui.NewScoresUI(a.out, a.quiet(), nil).PrintError(err)
			if errors.Is(err, source.ErrNoData) {
				return nil
			}
			return err
		}
		table := ov.Categories
		if table == nil {
			table = catalog.DefaultTable()
		}
		view := ui.NewMetricsUI(a.out, viper.GetInt("metrics.width"))
		view.PrintMetrics(*ov.Metrics, table)

		if all, err := source.JoinedRanking(ctx, a.backend); err == nil {
			view.PrintDistribution("Architecture distribution", ui.ArchitectureCounts(all))
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <model-id>",
	Short: "Suggest greener alternatives to a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		limit := viper.GetInt("recommend.limit")
		if limit <= 0 {
			return apperr.Userf("invalid --limit %d (must be > 0)", limit)
		}
		ctx := cmd.Context()
		m, err := a.backend.Model(ctx, args[0])
		if api.IsNotFound(err) {
			return apperr.Userf("model %q not found", args[0])
		}
		if err != nil {
			return err
		}
		recs, err := ui.Fetch(a.errOut, a.quiet(), "Finding greener alternatives", func() ([]catalog.Recommendation, error) {
			return a.backend.Recommendations(ctx, m.ID, limit)
		})
		if err != nil {
			return err
		}
		ui.NewRecommendationsUI(a.out).Print(m.Name, recs)
		return nil
	},
}

func init() {
	addQueryFlags(scoresCmd, "scores", scoreFilterFlags)

	rankingCmd.Flags().Int("limit", 10, "Number of models to show")
	viper.BindPFlag("ranking.limit", rankingCmd.Flags().Lookup("limit"))

	metricsCmd.Flags().Int("width", 30, "Bar width in cells")
	viper.BindPFlag("metrics.width", metricsCmd.Flags().Lookup("width"))

	recommendCmd.Flags().Int("limit", 5, "Number of alternatives")
	viper.BindPFlag("recommend.limit", recommendCmd.Flags().Lookup("limit"))

	scoresCmd.AddCommand(rankingCmd, categoriesCmd, metricsCmd, recommendCmd)
}
