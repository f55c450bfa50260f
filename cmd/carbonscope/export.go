package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/export"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
	"github.com/idlab-discover/carbonscope-cli/internal/source"
	"github.com/idlab-discover/carbonscope-cli/internal/ui"
	"github.com/idlab-discover/carbonscope-cli/internal/version"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export models with their carbon ratings",
	Long: `Export the models matching the query flags as JSON, YAML, CSV or a CycloneDX
AI bill of materials. By default every matching page is exported; --page and
--page-size with --all=false export a single page. Without --output the
result is written to stdout.`,
	Example: `  carbonscope export -o models.csv
  carbonscope export --architecture Transformer -o green.cdx.json --spec 1.6
  carbonscope export -f yaml`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	format, err := export.ParseFormat(viper.GetString("export.format"))
	if err != nil {
		return err
	}
	st, err := stateFromFlags(catalog.ModelSpec.NewState(), "export", modelFilterFlags)
	if err != nil {
		return err
	}

	wf := ui.NewWorkflow(a.errOut, "Export", a.quiet())
	loadIdx := wf.AddTask("Load models")
	scoreIdx := wf.AddTask("Join carbon scores")
	wf.Start()

	var models []catalog.Model
	err = wf.Step(loadIdx, func() (string, error) {
		var err error
		models, err = collectModels(ctx, a.backend, st, viper.GetBool("export.all"))
		return fmt.Sprintf("%d models", len(models)), err
	})
	if err != nil {
		wf.Stop()
		if errors.Is(err, source.ErrNoData) {
			ui.NewModelsUI(a.errOut, a.quiet()).PrintError(err)
			return nil
		}
		return err
	}

	wf.StartTask(scoreIdx, "")
	scores, err := a.backend.Ranking(ctx, source.RankAll)
	if err != nil {
		// models without a rating export with empty score columns
		wf.SkipTask(scoreIdx, err.Error())
		scores = nil
	} else {
		wf.CompleteTask(scoreIdx, fmt.Sprintf("%d scores", len(scores)))
	}
	wf.Stop()

	rows := export.Rows(models, scores)
	opts := export.Options{
		Format:      format,
		SpecVersion: viper.GetString("export.spec"),
		ToolVersion: version.String(),
	}
	out := viper.GetString("export.output")
	if out == "" || out == "-" {
		if opts.Format == export.FormatAuto {
			opts.Format = export.FormatJSON
		}
		return export.Write(a.out, rows, opts)
	}
	return export.WriteFile(out, rows, opts)
}

// collectModels returns the page st points at, or every matching page when
// all is set.
func collectModels(ctx context.Context, src source.ModelSource, st *query.State, all bool) ([]catalog.Model, error) {
	if !all {
		page, err := src.Models(ctx, st)
		return page.Items, err
	}
	return source.AllModels(ctx, src, st)
}

var exportCheckCmd = &cobra.Command{
	Use:   "check <aibom-file>",
	Short: "Score the carbon facts recorded in a CycloneDX AIBOM",
	Long: `Read a CycloneDX AIBOM (JSON, or XML for .xml files) and score every
machine-learning-model component on the carbon facts it records. Training CO2,
parameter count, carbon score and category are required; the rest is optional.
With --strict a missing required fact makes the command fail.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		bom, err := export.ReadBOM(args[0])
		if err != nil {
			return err
		}
		rep, err := export.Check(bom)
		if err != nil {
			return err
		}
		ui.NewCheckUI(a.out, a.quiet()).Print(rep)
		if !rep.Valid && viper.GetBool("export-check.strict") {
			return apperr.Userf("%s is missing required carbon facts", args[0])
		}
		return nil
	},
}

func init() {
	exportCheckCmd.Flags().Bool("strict", false, "Fail when a model lacks a required fact")
	viper.BindPFlag("export-check.strict", exportCheckCmd.Flags().Lookup("strict"))
	exportCmd.AddCommand(exportCheckCmd)

	addQueryFlags(exportCmd, "export", modelFilterFlags)
	f := exportCmd.Flags()
	f.StringP("output", "o", "", "Output file (default stdout)")
	f.StringP("format", "f", string(export.FormatAuto), "Output format: auto|json|yaml|csv|cyclonedx|cyclonedx-xml")
	f.String("spec", "", "CycloneDX spec version (1.0-1.6)")
	f.Bool("all", true, "Export every matching page")
	for _, name := range []string{"output", "format", "spec", "all"} {
		viper.BindPFlag("export."+name, f.Lookup(name))
	}
}
