package ui

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
)

// ScoresUI renders carbon score rankings and filtered score pages.
type ScoresUI struct {
	writer io.Writer
	quiet  bool
	table  *catalog.Table
}

// NewScoresUI creates a renderer. A nil table uses the default categories.
func NewScoresUI(w io.Writer, quiet bool, table *catalog.Table) *ScoresUI {
	if table == nil {
		table = catalog.DefaultTable()
	}
	return &ScoresUI{writer: w, quiet: quiet, table: table}
}

var scoreHeaders = []string{"#", "Model", "Carbon score", "Category", "Efficiency", "Percentile", "Params"}

func (u *ScoresUI) rows(scores []catalog.CarbonScore, offset int) [][]string {
	rows := make([][]string, len(scores))
	for i, s := range scores {
		params := "-"
		if s.ParametersBillions != nil {
			params = formatParams(*s.ParametersBillions)
		}
		rows[i] = []string{
			fmt.Sprint(offset + i + 1),
			s.ModelName,
			formatFloat(s.CarbonScore, 1),
			CategoryBadge(u.table, s.Category),
			formatFloat(s.EfficiencyRatio, 4),
			formatFloat(s.RankPercentile, 1),
			params,
		}
	}
	return rows
}

// PrintRanking renders the top of the ranking.
func (u *ScoresUI) PrintRanking(scores []catalog.CarbonScore) {
	if len(scores) == 0 {
		fmt.Fprintln(u.writer, EmptyState("scores", nil))
		return
	}
	if !u.quiet {
		fmt.Fprintln(u.writer, Title.Render("Carbon ranking"))
	}
	fmt.Fprintln(u.writer, newTable(scoreHeaders, u.rows(scores, 0)).String())
}

// PrintPage renders a filtered page of the score table.
func (u *ScoresUI) PrintPage(page query.Page[catalog.CarbonScore], st *query.State) {
	if len(page.Items) == 0 {
		fmt.Fprintln(u.writer, EmptyState("scores", st))
		return
	}
	offset := (page.Page - 1) * page.PageSize
	fmt.Fprintln(u.writer, newTable(scoreHeaders, u.rows(page.Items, offset)).String())
	if !u.quiet {
		fmt.Fprintln(u.writer, PageFooter(page.Page, page.PageCount(), page.Total, st))
	}
}

// PrintError renders a failed load.
func (u *ScoresUI) PrintError(err error) {
	fmt.Fprintln(u.writer, LoadError("carbon scores", err))
}

// CategoriesUI renders the category table.
type CategoriesUI struct {
	writer io.Writer
}

func NewCategoriesUI(w io.Writer) *CategoriesUI { return &CategoriesUI{writer: w} }

// PrintTable lists every band from best to worst.
func (u *CategoriesUI) PrintTable(table *catalog.Table) {
	cats := table.Categories()
	rows := make([][]string, len(cats))
	for i, c := range cats {
		rows[i] = []string{CategoryBadge(table, c.Label), "≥ " + formatFloat(c.MinScore, 1), c.Color, orDash(c.Description)}
	}
	fmt.Fprintln(u.writer, newTable([]string{"Category", "Min score", "Color", "Description"}, rows).String())
}

// MetricsUI renders the aggregate efficiency metrics as text and bars.
type MetricsUI struct {
	writer io.Writer
	width  int
}

// NewMetricsUI creates a renderer with bars of barWidth cells.
func NewMetricsUI(w io.Writer, barWidth int) *MetricsUI {
	if barWidth <= 0 {
		barWidth = 30
	}
	return &MetricsUI{writer: w, width: barWidth}
}

// PrintMetrics renders the summary figures and the category distribution.
func (u *MetricsUI) PrintMetrics(m catalog.EfficiencyMetrics, table *catalog.Table) {
	var sb strings.Builder
	sb.WriteString(Title.Render("Efficiency metrics"))
	sb.WriteString("\n\n")
	sb.WriteString(FormatKeyValue("Models", formatNumber(m.TotalModels)) + "\n")
	sb.WriteString(FormatKeyValue("Average", formatFloat(m.AverageScore, 2)) + "\n")
	sb.WriteString(FormatKeyValue("Median", formatFloat(m.MedianScore, 2)) + "\n")
	sb.WriteString(FormatKeyValue("Best", formatFloat(m.BestScore, 2)) + "\n")
	sb.WriteString(FormatKeyValue("Worst", formatFloat(m.WorstScore, 2)))
	fmt.Fprintln(u.writer, Box.Render(sb.String()))

	fmt.Fprintln(u.writer, SectionHeader.Render("Category distribution"))
	maxCount := slices.Max(append(slices.Collect(maps.Values(m.CategoryDistribution)), 0))
	for _, c := range table.Categories() {
		n := m.CategoryDistribution[c.Label]
		bar := Bar(float64(n), float64(maxCount), u.width, lipgloss.Color(c.Color))
		fmt.Fprintf(u.writer, "%s %s %s\n", padBadge(CategoryBadge(table, c.Label)), bar, Dim.Render(fmt.Sprint(n)))
	}
}

// PrintDistribution renders counts as bars, largest first. It stands in for
// the dashboard's pie charts.
func (u *MetricsUI) PrintDistribution(title string, counts map[string]int) {
	fmt.Fprintln(u.writer, SectionHeader.Render(title))
	if len(counts) == 0 {
		fmt.Fprintln(u.writer, Dim.Render("  (no data)"))
		return
	}
	keys := slices.SortedFunc(maps.Keys(counts), func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	maxCount := counts[keys[0]]
	label := 0
	for _, k := range keys {
		label = max(label, lipgloss.Width(k))
	}
	for _, k := range keys {
		fmt.Fprintf(u.writer, "  %-*s %s %s\n", label, k, Bar(float64(counts[k]), float64(maxCount), u.width, ColorSecondary), Dim.Render(fmt.Sprint(counts[k])))
	}
}

// ArchitectureCounts counts joined score rows by architecture.
func ArchitectureCounts(scores []catalog.CarbonScore) map[string]int {
	out := map[string]int{}
	for _, s := range scores {
		if s.Architecture != "" {
			out[s.Architecture]++
		}
	}
	return out
}

func padBadge(b string) string {
	const w = 4
	if pad := w - lipgloss.Width(b); pad > 0 {
		return b + strings.Repeat(" ", pad)
	}
	return b
}

// RecommendationsUI renders greener alternatives.
type RecommendationsUI struct {
	writer io.Writer
}

func NewRecommendationsUI(w io.Writer) *RecommendationsUI { return &RecommendationsUI{writer: w} }

// Print lists recommendations for the named model.
func (u *RecommendationsUI) Print(model string, recs []catalog.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(u.writer, Success.Render(GetCheckMark()+" "+model+" is already the greenest option among comparable models."))
		return
	}
	fmt.Fprintln(u.writer, Title.Render("Greener alternatives to "+model))
	rows := make([][]string, len(recs))
	for i, r := range recs {
		diff := formatFloat(r.PerformanceDifferencePercent, 1) + "%"
		if r.PerformanceDifferencePercent > 0 {
			diff = Success.Render("+" + diff)
		} else if r.PerformanceDifferencePercent < -10 {
			diff = Warning.Render(diff)
		}
		rows[i] = []string{r.RecommendedModelName, formatKg(r.CO2SavingsKg), diff, formatFloat(r.SimilarityScore*100, 0) + "%", r.Reason}
	}
	fmt.Fprintln(u.writer, newTable([]string{"Model", "CO2 saved", "Performance", "Similarity", "Why"}, rows).String())
}
