package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"

	cmd "github.com/idlab-discover/carbonscope-cli/cmd/carbonscope"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/ui"
	"github.com/idlab-discover/carbonscope-cli/internal/version"
)

func main() {
	cmd.SetVersion(version.String())
	if err := fang.Execute(
		context.Background(),
		cmd.GetRootCmd(),
		fang.WithColorSchemeFunc(ui.FangColorScheme),
	); err != nil {
		// User deliberately cancelled an interactive flow – not a failure.
		if errors.Is(err, apperr.ErrCancelled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
