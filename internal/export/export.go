// Package export writes catalog snapshots to files: plain data formats for
// spreadsheets and scripts, and a CycloneDX AIBOM for supply chain tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

// Format is an output encoding.
type Format string

const (
	FormatAuto         Format = "auto"
	FormatJSON         Format = "json"
	FormatYAML         Format = "yaml"
	FormatCSV          Format = "csv"
	FormatCycloneDX    Format = "cyclonedx"
	FormatCycloneDXXML Format = "cyclonedx-xml"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatAuto, FormatJSON, FormatYAML, FormatCSV, FormatCycloneDX, FormatCycloneDXXML}

// ParseFormat validates a --format value. Empty means auto.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatAuto, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", apperr.Userf("unsupported export format %q (expected one of %s)", s, strings.Join(names, "|"))
}

// Resolve turns auto into a concrete format based on the file extension.
// A CycloneDX file is recognised by a .cdx.json or .xml suffix.
func Resolve(f Format, path string) (Format, error) {
	if f != FormatAuto && f != "" {
		return f, nil
	}
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".cdx.json"):
		return FormatCycloneDX, nil
	case strings.HasSuffix(lower, ".xml"):
		return FormatCycloneDXXML, nil
	}
	switch filepath.Ext(lower) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case "":
		return FormatJSON, nil
	}
	return "", apperr.Userf("cannot infer export format from %q; pass --format", filepath.Base(path))
}

// Row is one exported model with its carbon rating joined in.
type Row struct {
	catalog.Model `yaml:",inline"`
	CarbonScore   *float64 `json:"carbon_score,omitempty" yaml:"carbon_score,omitempty"`
	Category      string   `json:"carbon_category,omitempty" yaml:"carbon_category,omitempty"`
}

// Rows joins models with their scores by model id. Models without a score
// keep empty rating fields.
func Rows(models []catalog.Model, scores []catalog.CarbonScore) []Row {
	byID := make(map[string]catalog.CarbonScore, len(scores))
	for _, s := range scores {
		byID[s.ModelID] = s
	}
	rows := make([]Row, len(models))
	for i, m := range models {
		rows[i] = Row{Model: m}
		if s, ok := byID[m.ID]; ok {
			v := s.CarbonScore
			rows[i].CarbonScore = &v
			rows[i].Category = s.Category
		}
	}
	return rows
}

// Options control a single export.
type Options struct {
	Format Format
	// SpecVersion pins the CycloneDX version, e.g. "1.5". Empty uses the
	// library default.
	SpecVersion string
	// ToolVersion is recorded in the AIBOM metadata.
	ToolVersion string
}

// Write encodes rows to w.
func Write(w io.Writer, rows []Row, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatCycloneDX, FormatCycloneDXXML:
		return writeCycloneDX(w, rows, opts)
	default:
		return apperr.Userf("unsupported export format %q", opts.Format)
	}
}

// WriteFile resolves the format from path when needed and writes rows to it.
func WriteFile(path string, rows []Row, opts Options) error {
	f, err := Resolve(opts.Format, path)
	if err != nil {
		return err
	}
	opts.Format = f
	if opts.SpecVersion != "" {
		if _, ok := ParseSpecVersion(opts.SpecVersion); !ok {
			return errUnsupportedSpec(opts.SpecVersion)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, rows, opts); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	logf(path, "wrote %d models as %s", len(rows), f)
	return nil
}

func errUnsupportedSpec(v string) error {
	return apperr.Userf("unsupported CycloneDX spec version: %q", v)
}

var csvHeader = []string{
	"id", "model_name", "parameters_billions", "architecture", "model_type",
	"cloud_provider", "training_co2_kg", "overall_score", "carbon_score",
	"carbon_category", "date_submitted",
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		score := ""
		if r.CarbonScore != nil {
			score = formatFloat(*r.CarbonScore)
		}
		rec := []string{
			r.ID, r.Name, formatFloat(r.ParametersBillions), r.Architecture, r.ModelType,
			r.Cloud(), formatFloat(r.TrainingCO2Kg), formatFloat(r.OverallScore), score,
			r.Category, r.DateSubmitted,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
