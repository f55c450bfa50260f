package catalog

import (
	"slices"
	"strings"
)

// Category is one carbon rating band.
type Category struct {
	Label       string  `json:"label" yaml:"label"`
	MinScore    float64 `json:"min_score" yaml:"min_score"`
	Color       string  `json:"color" yaml:"color"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Tone is the foreground text tone that stays readable on a category color.
type Tone int

const (
	ToneLight Tone = iota
	ToneDark
)

// FloorLabel is the catch-all category.
const FloorLabel = "F"

// lightCategories have pale backgrounds and need dark text.
var lightCategories = map[string]bool{"A+": true, "A": true, "B": true}

// Table is an ordered set of categories, highest threshold first.
type Table struct {
	cats []Category
}

// DefaultCategories mirrors the backend's built-in table.
var DefaultCategories = []Category{
	{Label: "A+", MinScore: 90, Color: "#1a9850", Description: "Extremely low environmental impact"},
	{Label: "A", MinScore: 80, Color: "#66bd63", Description: "Very low environmental impact"},
	{Label: "B", MinScore: 70, Color: "#a6d96a", Description: "Low environmental impact"},
	{Label: "C", MinScore: 50, Color: "#fee08b", Description: "Moderate environmental impact"},
	{Label: "D", MinScore: 30, Color: "#fdae61", Description: "High environmental impact"},
	{Label: "E", MinScore: 10, Color: "#f46d43", Description: "Very high environmental impact"},
	{Label: "F", MinScore: 0, Color: "#d73027", Description: "Extremely high environmental impact"},
}

// DefaultTable returns the built-in category table.
func DefaultTable() *Table { return NewTable(DefaultCategories) }

// NewTable orders cats by descending threshold. A missing F band is added
// so that every score maps somewhere.
func NewTable(cats []Category) *Table {
	out := slices.Clone(cats)
	slices.SortStableFunc(out, func(a, b Category) int {
		switch {
		case a.MinScore > b.MinScore:
			return -1
		case a.MinScore < b.MinScore:
			return 1
		default:
			return 0
		}
	})
	if !slices.ContainsFunc(out, func(c Category) bool { return c.Label == FloorLabel }) {
		out = append(out, DefaultCategories[len(DefaultCategories)-1])
	}
	return &Table{cats: out}
}

// CategoryBand is the backend's wire shape for one entry of /categories.
type CategoryBand struct {
	MinScore    float64 `json:"min_score"`
	Color       string  `json:"color"`
	Description string  `json:"description,omitempty"`
}

// TableFromBands builds a table from the label-keyed backend payload.
func TableFromBands(bands map[string]CategoryBand) *Table {
	cats := make([]Category, 0, len(bands))
	for label, b := range bands {
		cats = append(cats, Category{Label: label, MinScore: b.MinScore, Color: b.Color, Description: b.Description})
	}
	// map order is random; break threshold ties by label
	slices.SortFunc(cats, func(a, b Category) int { return strings.Compare(a.Label, b.Label) })
	return NewTable(cats)
}

// Categories returns the table, highest threshold first.
func (t *Table) Categories() []Category { return slices.Clone(t.cats) }

// Lookup finds a category by label.
func (t *Table) Lookup(label string) (Category, bool) {
	for _, c := range t.cats {
		if c.Label == label {
			return c, true
		}
	}
	return Category{}, false
}

// For returns the highest category whose threshold is <= score. Scores below
// every threshold fall to F.
func (t *Table) For(score float64) Category {
	for _, c := range t.cats {
		if score >= c.MinScore {
			return c
		}
	}
	f, _ := t.Lookup(FloorLabel)
	return f
}

// Color returns the display color of a label, or F's color for unknown labels.
func (t *Table) Color(label string) string {
	if c, ok := t.Lookup(label); ok {
		return c.Color
	}
	f, _ := t.Lookup(FloorLabel)
	return f.Color
}

// CategoryFor maps a score to its category in the default table.
func CategoryFor(score float64) Category { return DefaultTable().For(score) }

// Color returns a label's color in the default table.
func Color(label string) string { return DefaultTable().Color(label) }

// TextTone picks dark text for the light categories and light text otherwise.
func TextTone(label string) Tone {
	if lightCategories[label] {
		return ToneDark
	}
	return ToneLight
}
