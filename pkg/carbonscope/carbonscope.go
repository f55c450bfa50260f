// Package carbonscope is the public entry point for programs that want the
// catalog, the carbon categories or the impact simulator without the CLI.
package carbonscope

import (
	"io"
	"time"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/export"
	"github.com/idlab-discover/carbonscope-cli/internal/session"
	"github.com/idlab-discover/carbonscope-cli/internal/simulator"
	"github.com/idlab-discover/carbonscope-cli/internal/source"
)

type (
	Model            = catalog.Model
	CarbonScore      = catalog.CarbonScore
	Category         = catalog.Category
	Recommendation   = catalog.Recommendation
	Region           = catalog.Region
	SimulationResult = simulator.Result
	Backend          = source.Backend
)

// CategoryFor rates a carbon score with the built-in category table.
func CategoryFor(score float64) Category { return catalog.CategoryFor(score) }

// Regions returns the built-in simulator regions.
func Regions() []Region { return catalog.DefaultRegions() }

// Simulate estimates the footprint of serving model in region at frequency
// requests per day for days days.
func Simulate(model Model, region Region, frequency, days int) (SimulationResult, error) {
	return simulator.Simulate(simulator.Input{
		Model:        &model,
		Region:       &region,
		Frequency:    frequency,
		DurationDays: days,
	})
}

// ClientOptions configure NewClient.
type ClientOptions struct {
	// BaseURL of the backend; empty means http://localhost:8000.
	BaseURL string
	Timeout time.Duration
	// Token is sent as a bearer token when set.
	Token string
	// ClientSide loads the whole catalog once and filters locally instead
	// of delegating every query to the backend.
	ClientSide bool
	// Offline serves the built-in fixtures and never touches the network.
	Offline bool
}

// NewClient returns a Backend for opts.
func NewClient(opts ClientOptions) Backend {
	tokens := &session.MemoryTokenStore{}
	if opts.Token != "" {
		_ = tokens.SetToken(opts.Token)
	}
	base := opts.BaseURL
	if base == "" {
		base = api.DefaultBaseURL
	}
	mode := source.ModeServer
	if opts.ClientSide {
		mode = source.ModeClient
	}
	c := api.New(base, api.NewHTTPClient(opts.Timeout, tokens))
	return source.New(mode, opts.Offline, c)
}

// Export writes models, joined with their scores, in format (json, yaml,
// csv, cyclonedx or cyclonedx-xml).
func Export(w io.Writer, models []Model, scores []CarbonScore, format string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	if f == export.FormatAuto {
		f = export.FormatJSON
	}
	return export.Write(w, export.Rows(models, scores), export.Options{Format: f})
}
