package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/simulator"
)

// SimulationUI renders simulator results, regions and saved history.
type SimulationUI struct {
	writer io.Writer
	quiet  bool
}

func NewSimulationUI(w io.Writer, quiet bool) *SimulationUI {
	return &SimulationUI{writer: w, quiet: quiet}
}

// PrintResult renders a result box with the everyday equivalents.
func (u *SimulationUI) PrintResult(r simulator.Result) {
	if u.quiet {
		fmt.Fprintf(u.writer, "%s\t%s\t%s kWh\t%s kg\n", r.ModelName, r.RegionID, formatFloat(r.EnergyKWh, 4), formatFloat(r.CO2Kg, 4))
		return
	}
	var sb strings.Builder
	sb.WriteString(Success.Bold(true).Render("Inference impact"))
	sb.WriteString("\n\n")
	sb.WriteString(FormatKeyValue("Model", Highlight.Render(r.ModelName)) + "\n")
	sb.WriteString(FormatKeyValue("Region", r.RegionName) + "\n")
	sb.WriteString(FormatKeyValue("Usage", fmt.Sprintf("%s requests/day for %s", formatNumber(r.Frequency), plural(r.DurationDays, "day"))) + "\n\n")
	sb.WriteString(FormatKeyValue("Energy", Bold.Render(formatFloat(r.EnergyKWh, 4)+" kWh")) + "\n")
	sb.WriteString(FormatKeyValue("CO2", Bold.Render(formatFloat(r.CO2Kg, 4)+" kg")) + "\n\n")
	sb.WriteString(SectionHeader.Render("That is about"))
	sb.WriteString("\n")
	for _, line := range []string{
		formatFloat(r.CarKm, 1) + " km by car",
		plural(r.Trees, "tree") + " absorbing CO2 for a year",
		formatNumber(r.PhoneCharges) + " smartphone charges",
		formatFloat(r.Flights, 4) + " Paris-New York flights",
		formatFloat(r.BeefKg, 3) + " kg of beef",
	} {
		sb.WriteString("  " + GetBullet() + " " + line + "\n")
	}
	if r.ID != "" {
		sb.WriteString("\n" + Dim.Render("saved as "+r.ID))
	}
	fmt.Fprintln(u.writer, SuccessBox.Render(strings.TrimRight(sb.String(), "\n")))
}

// PrintRegions lists the selectable regions.
func (u *SimulationUI) PrintRegions(regions []catalog.Region) {
	rows := make([][]string, len(regions))
	for i, r := range regions {
		rows[i] = []string{r.ID, r.Name, formatFloat(r.CO2Factor, 3), orDash(r.Description)}
	}
	fmt.Fprintln(u.writer, newTable([]string{"ID", "Region", "kg CO2/kWh", "Notes"}, rows).String())
}

// PrintHistory lists saved simulations, newest first.
func (u *SimulationUI) PrintHistory(items []simulator.Result) {
	if len(items) == 0 {
		fmt.Fprintln(u.writer, Dim.Render("No saved simulations."))
		return
	}
	rows := make([][]string, len(items))
	for i, r := range items {
		rows[i] = []string{
			shortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.ModelName,
			r.RegionName,
			fmt.Sprintf("%s/day × %dd", formatNumber(r.Frequency), r.DurationDays),
			formatFloat(r.EnergyKWh, 3) + " kWh",
			formatFloat(r.CO2Kg, 3) + " kg",
		}
	}
	fmt.Fprintln(u.writer, newTable([]string{"ID", "When", "Model", "Region", "Usage", "Energy", "CO2"}, rows).String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintDeleted confirms a history deletion.
func (u *SimulationUI) PrintDeleted(id string) {
	fmt.Fprintf(u.writer, "%s Deleted simulation %s\n", GetCheckMark(), shortID(id))
}
