package cmd

import (
	"github.com/spf13/cobra"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog interactively",
	Long: `Open a full-screen model browser. Search with /, cycle the sort field with s
and flip its direction with S, page with n/p, change the page size with z and
reset everything with r. Enter shows the highlighted model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		st, err := stateFromFlags(catalog.ModelSpec.NewState(), "browse", modelFilterFlags)
		if err != nil {
			return err
		}
		m, err := ui.RunBrowser(cmd.Context(), ui.BrowserConfig{Source: a.backend, State: st})
		if err != nil {
			return err
		}
		return showModel(cmd.Context(), a, m.ID)
	},
}

func init() {
	addQueryFlags(browseCmd, "browse", modelFilterFlags)
}
