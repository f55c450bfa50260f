package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/simulator"
	"github.com/idlab-discover/carbonscope-cli/internal/source"
	"github.com/idlab-discover/carbonscope-cli/internal/ui"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Estimate the inference footprint of a model in a region",
	Long: `Estimate energy and CO2 for serving a model: parameters x 0.0001 kWh per
request per billion parameters x requests per day x days, times the region's
grid intensity. The estimate runs locally; the backend only supplies the model
and the region list. Without --model and --region an interactive form is shown.`,
	Example: `  carbonscope simulate --model Mistral-7B --region europe
  carbonscope simulate --model 3 --region sweden --frequency 5000 --days 365 --save
  carbonscope simulate -i`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	in := simulator.Input{
		Frequency:    viper.GetInt("simulate.frequency"),
		DurationDays: viper.GetInt("simulate.days"),
	}
	regions, err := a.backend.Regions(ctx)
	if err != nil || len(regions) == 0 {
		regions = catalog.DefaultRegions()
	}
	if key := viper.GetString("simulate.region"); key != "" {
		if in.Region, err = simulator.FindRegion(regions, key); err != nil {
			return err
		}
	}
	if key := strings.TrimSpace(viper.GetString("simulate.model")); key != "" {
		if in.Model, err = findModel(ctx, a.backend, key); err != nil {
			return err
		}
	}

	if viper.GetBool("simulate.interactive") || (in.Model == nil && in.Region == nil) {
		models, err := ui.Fetch(a.errOut, a.quiet(), "Loading models", func() ([]catalog.Model, error) {
			return allModels(ctx, a.backend)
		})
		if err != nil {
			return err
		}
		if in.Frequency <= 0 {
			in.Frequency = simulator.DefaultFrequency
		}
		if in.DurationDays <= 0 {
			in.DurationDays = simulator.DefaultDurationDays
		}
		if in, err = ui.SimulatorForm(models, regions, in); err != nil {
			return err
		}
	}

	res, err := simulator.Simulate(in)
	if err != nil {
		return err
	}
	if viper.GetBool("simulate.save") {
		h, err := openHistory()
		if err != nil {
			return err
		}
		if res, err = h.Save(res); err != nil {
			return err
		}
	}
	ui.NewSimulationUI(a.out, a.quiet()).PrintResult(res)
	return nil
}

// findModel resolves key as an id first, then as an exact name.
func findModel(ctx context.Context, b source.ModelSource, key string) (*catalog.Model, error) {
	m, err := b.Model(ctx, key)
	if err == nil {
		return m, nil
	}
	if !api.IsNotFound(err) {
		return nil, err
	}
	st := catalog.ModelSpec.NewState()
	st.SetSearch(key)
	_ = st.SetPageSize(100)
	page, err := b.Models(ctx, st)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		if strings.EqualFold(page.Items[i].Name, key) {
			return &page.Items[i], nil
		}
	}
	return nil, apperr.Userf("model %q not found (use an id or the exact model name)", key)
}

// allModels returns every model, sorted by name, for the simulator form.
func allModels(ctx context.Context, b source.ModelSource) ([]catalog.Model, error) {
	return source.AllModels(ctx, b, catalog.ModelSpec.NewState())
}

func historyPath() string {
	if p := strings.TrimSpace(viper.GetString("simulate.history-file")); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".carbonscope", "simulations.yaml")
}

func openHistory() (*simulator.History, error) {
	return simulator.OpenHistory(historyPath())
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regions and their grid intensity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		regions, err := a.backend.Regions(cmd.Context())
		if err != nil || len(regions) == 0 {
			regions = catalog.DefaultRegions()
		}
		ui.NewSimulationUI(a.out, a.quiet()).PrintRegions(regions)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved simulations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		h, err := openHistory()
		if err != nil {
			return err
		}
		ui.NewSimulationUI(a.out, a.quiet()).PrintHistory(h.List())
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved simulation (an unambiguous id prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if !viper.GetBool("history-delete.yes") {
			ok, err := ui.Confirm("Delete simulation "+args[0]+"?", "This cannot be undone.")
			if err != nil {
				return err
			}
			if !ok {
				return apperr.ErrCancelled
			}
		}
		h, err := openHistory()
		if err != nil {
			return err
		}
		if err := h.Delete(args[0]); err != nil {
			return err
		}
		ui.NewSimulationUI(a.out, a.quiet()).PrintDeleted(args[0])
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.StringP("model", "m", "", "Model id or exact name")
	f.StringP("region", "r", "", "Region id or name (see `simulate regions`)")
	f.Int("frequency", simulator.DefaultFrequency, "Requests per day")
	f.Int("days", simulator.DefaultDurationDays, "Duration in days")
	f.BoolP("interactive", "i", false, "Pick model, region and usage in a form")
	f.Bool("save", false, "Save the result to the simulation history")
	for _, name := range []string{"model", "region", "frequency", "days", "interactive", "save"} {
		viper.BindPFlag("simulate."+name, f.Lookup(name))
	}
	simulateCmd.PersistentFlags().String("history-file", "", "Simulation history file (default $HOME/.carbonscope/simulations.yaml)")
	viper.BindPFlag("simulate.history-file", simulateCmd.PersistentFlags().Lookup("history-file"))

	historyDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	viper.BindPFlag("history-delete.yes", historyDeleteCmd.Flags().Lookup("yes"))

	historyCmd.AddCommand(historyDeleteCmd)
	simulateCmd.AddCommand(regionsCmd, historyCmd)
}
