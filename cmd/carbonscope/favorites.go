package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/ui"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "List, add and remove favorite models (requires login)",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := signedIn(cmd)
		if err != nil {
			return err
		}
		models, err := ui.Fetch(a.errOut, a.quiet(), "Loading favorites", func() ([]catalog.Model, error) {
			return a.client.Favorites(cmd.Context())
		})
		if err != nil {
			return a.session.Observe(err)
		}
		ui.NewProfileUI(a.out).PrintFavorites(models)
		return nil
	},
}

// signedIn builds the app and insists on an online session.
func signedIn(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if a.cfg.Dummy {
		return nil, apperr.User("favorites are stored by the backend and are not available with --backend dummy")
	}
	if err := a.requireUser(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}

func favoriteCommand(use, short, done string, call func(a *app, ctx context.Context, id string) (*catalog.User, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <model-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedIn(cmd)
			if err != nil {
				return err
			}
			if _, err := call(a, cmd.Context(), args[0]); err != nil {
				return a.session.Observe(err)
			}
			ui.NewProfileUI(a.out).PrintFavoriteChange(done, args[0])
			return nil
		},
	}
}

func init() {
	favoritesCmd.AddCommand(
		favoriteCommand("add", "Bookmark a model", "Added", func(a *app, ctx context.Context, id string) (*catalog.User, error) {
			return a.client.AddFavorite(ctx, id)
		}),
		favoriteCommand("remove", "Remove a bookmark", "Removed", func(a *app, ctx context.Context, id string) (*catalog.User, error) {
			return a.client.RemoveFavorite(ctx, id)
		}),
	)
}
