package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
	"github.com/idlab-discover/carbonscope-cli/internal/source"
)

// ModelsUI renders the model list and model details.
type ModelsUI struct {
	writer io.Writer
	quiet  bool
}

// NewModelsUI creates a renderer for the models command.
func NewModelsUI(w io.Writer, quiet bool) *ModelsUI {
	return &ModelsUI{writer: w, quiet: quiet}
}

var modelHeaders = []string{"ID", "Model", "Params", "Architecture", "Type", "Cloud", "Training CO2", "Score"}

func modelRow(m catalog.Model) []string {
	return []string{
		m.ID,
		m.Name,
		formatParams(m.ParametersBillions),
		orDash(m.Architecture),
		orDash(m.ModelType),
		orDash(m.Cloud()),
		formatKg(m.TrainingCO2Kg),
		formatFloat(m.OverallScore, 1),
	}
}

// PrintPage renders one page of models with its footer. An empty page is
// the "no matching records" state, distinct from a failed load.
func (u *ModelsUI) PrintPage(page query.Page[catalog.Model], st *query.State) {
	if len(page.Items) == 0 {
		fmt.Fprintln(u.writer, EmptyState("models", st))
		return
	}
	rows := make([][]string, len(page.Items))
	for i, m := range page.Items {
		rows[i] = modelRow(m)
	}
	fmt.Fprintln(u.writer, newTable(modelHeaders, rows).String())
	if !u.quiet {
		fmt.Fprintln(u.writer, PageFooter(page.Page, page.PageCount(), page.Total, st))
	}
}

// PrintError renders a failed load. ErrNoData gets its own message so users
// can tell an empty catalog from a broken backend.
func (u *ModelsUI) PrintError(err error) {
	fmt.Fprintln(u.writer, LoadError("models", err))
}

// PrintDetail renders a single model and, when known, its carbon rating.
func (u *ModelsUI) PrintDetail(m catalog.Model, score *catalog.CarbonScore, table *catalog.Table) {
	var sb strings.Builder
	sb.WriteString(Title.Render(m.Name))
	sb.WriteString(Dim.Render("  #" + m.ID))
	sb.WriteString("\n\n")

	kv := func(k, v string) {
		sb.WriteString(FormatKeyValue(k, v))
		sb.WriteString("\n")
	}
	kv("Parameters", formatParams(m.ParametersBillions))
	kv("Architecture", orDash(m.Architecture))
	kv("Type", orDash(m.ModelType))
	kv("Cloud provider", orDash(m.Cloud()))
	kv("Training CO2", formatKg(m.TrainingCO2Kg))
	if m.TrainingEnergyMWh != nil {
		kv("Training energy", formatFloat(*m.TrainingEnergyMWh, 2)+" MWh")
	}
	if m.WaterUseMillionLiters != nil {
		kv("Water use", formatFloat(*m.WaterUseMillionLiters, 2)+" ML")
	}
	kv("Overall score", formatFloat(m.OverallScore, 2))
	kv("MMLU / BBH / MATH", strings.Join([]string{
		formatOptional(m.MMLUScore, 1), formatOptional(m.BBHScore, 1), formatOptional(m.MathScore, 1),
	}, " / "))
	if m.DateSubmitted != "" {
		kv("Submitted", m.DateSubmitted)
	}
	if score != nil {
		sb.WriteString("\n")
		kv("Carbon score", formatFloat(score.CarbonScore, 1)+" "+CategoryBadge(table, score.Category))
		kv("Efficiency ratio", formatFloat(score.EfficiencyRatio, 4))
		kv("Rank percentile", formatFloat(score.RankPercentile, 1))
	}
	fmt.Fprintln(u.writer, Box.Render(strings.TrimRight(sb.String(), "\n")))
}

// EmptyState is the message for a query that matched nothing.
func EmptyState(what string, st *query.State) string {
	msg := fmt.Sprintf("No matching %s.", what)
	if st != nil && (len(st.Active()) > 0 || st.Search != "") {
		msg += " " + Dim.Render("Try relaxing the filters or the search.")
	}
	return Warning.Render(GetWarnMark() + " " + msg)
}

// LoadError is the message for a failed load.
func LoadError(what string, err error) string {
	if errors.Is(err, source.ErrNoData) {
		return Warning.Render(GetWarnMark() + " No " + what + " available from the backend.")
	}
	return ErrorBox.Render(GetCrossMark() + " " + fmt.Sprintf("Could not load %s: %v", what, err))
}

// PageFooter summarises the position in a paginated list and the active
// query.
func PageFooter(page, pages, total int, st *query.State) string {
	if pages == 0 {
		pages = 1
	}
	parts := []string{fmt.Sprintf("Page %d of %d", page, pages), plural(total, "result")}
	if st != nil {
		parts = append(parts, fmt.Sprintf("%d per page", st.PageSize))
		parts = append(parts, "sorted by "+st.Sort.Field+" "+string(st.Sort.Direction))
		for _, c := range st.Active() {
			parts = append(parts, c.Param.Name+"="+c.Value)
		}
		if st.Search != "" {
			parts = append(parts, fmt.Sprintf("search=%q", st.Search))
		}
	}
	return Dim.Render(strings.Join(parts, " · "))
}

// PrintFilterOptions lists the selectable filter values.
func PrintFilterOptions(w io.Writer, opts catalog.FilterOptions) {
	var sb strings.Builder
	section := func(title string, vals []string) {
		sb.WriteString(SectionHeader.Render(title))
		sb.WriteString("\n")
		if len(vals) == 0 {
			sb.WriteString(Dim.Render("  (none)\n"))
		}
		for _, v := range vals {
			sb.WriteString("  " + GetBullet() + " " + v + "\n")
		}
	}
	section("Architectures", opts.Architectures)
	section("Model types", opts.ModelTypes)
	section("Cloud providers", opts.CloudProviders)
	fmt.Fprint(w, sb.String())
}
