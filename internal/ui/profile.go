package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

// ProfileUI renders the session user.
type ProfileUI struct {
	writer io.Writer
}

func NewProfileUI(w io.Writer) *ProfileUI { return &ProfileUI{writer: w} }

// PrintUser renders the signed-in profile.
func (u *ProfileUI) PrintUser(user catalog.User) {
	var sb strings.Builder
	sb.WriteString(Title.Render(user.DisplayName()))
	sb.WriteString("\n\n")
	sb.WriteString(FormatKeyValue("Username", user.Username) + "\n")
	sb.WriteString(FormatKeyValue("Email", orDash(user.Email)) + "\n")
	status := Success.Render("active")
	if !user.IsActive {
		status = Warning.Render("inactive")
	}
	sb.WriteString(FormatKeyValue("Status", status))
	if user.IsAdmin {
		sb.WriteString(" " + Highlight.Render("admin"))
	}
	if len(user.Favorites) > 0 {
		sb.WriteString("\n" + FormatKeyValue("Favorites", plural(len(user.Favorites), "model")))
	}
	fmt.Fprintln(u.writer, Box.Render(sb.String()))
}

// PrintSignedIn confirms a login or registration.
func (u *ProfileUI) PrintSignedIn(user catalog.User) {
	fmt.Fprintf(u.writer, "%s Signed in as %s\n", GetCheckMark(), Highlight.Render(user.DisplayName()))
}

// PrintSignedOut confirms a logout.
func (u *ProfileUI) PrintSignedOut() {
	fmt.Fprintf(u.writer, "%s Signed out\n", GetCheckMark())
}

// PrintAnonymous is shown when no session exists.
func (u *ProfileUI) PrintAnonymous() {
	fmt.Fprintf(u.writer, "%s Not signed in. Run %s first.\n", GetInfoMark(), Bold.Render("carbonscope login"))
}

// PrintFavorites lists the user's favourite models.
func (u *ProfileUI) PrintFavorites(models []catalog.Model) {
	if len(models) == 0 {
		fmt.Fprintln(u.writer, Dim.Render("No favorite models yet."))
		return
	}
	rows := make([][]string, len(models))
	for i, m := range models {
		rows[i] = modelRow(m)
	}
	fmt.Fprintln(u.writer, newTable(modelHeaders, rows).String())
}

// StatisticsUI renders the catalog-wide figures.
type StatisticsUI struct {
	writer io.Writer
}

func NewStatisticsUI(w io.Writer) *StatisticsUI { return &StatisticsUI{writer: w} }

// Print renders the statistics box.
func (u *StatisticsUI) Print(s catalog.Statistics) {
	var sb strings.Builder
	sb.WriteString(Title.Render("Catalog statistics"))
	sb.WriteString("\n\n")
	sb.WriteString(FormatKeyValue("Models", formatNumber(s.TotalModels)) + "\n")
	sb.WriteString(FormatKeyValue("Average size", formatParams(s.AverageParameters)) + "\n")
	sb.WriteString(FormatKeyValue("Average training CO2", formatKg(s.AverageCO2)) + "\n")
	sb.WriteString(FormatKeyValue("Total training CO2", formatKg(s.TotalCO2)) + "\n")
	sb.WriteString(FormatKeyValue("Average score", formatFloat(s.AverageScore, 2)) + "\n")
	sb.WriteString(FormatKeyValue("Most common architecture", orDash(s.MostCommonArchitecture)) + "\n")
	sb.WriteString(FormatKeyValue("Most common type", orDash(s.MostCommonModelType)))
	for _, ref := range []struct {
		label string
		ref   catalog.ModelRef
	}{
		{"Most efficient", s.MostEfficientModel},
		{"Least efficient", s.LeastEfficientModel},
		{"Best performing", s.BestPerformingModel},
		{"Most recent", s.MostRecentModel},
	} {
		if name := ref.ref.Name(); name != "" {
			sb.WriteString("\n" + FormatKeyValue(ref.label, Highlight.Render(name)))
		}
	}
	fmt.Fprintln(u.writer, Box.Render(sb.String()))
}

// PrintFavoriteChange confirms an added or removed favorite.
func (u *ProfileUI) PrintFavoriteChange(verb, modelID string) {
	fmt.Fprintf(u.writer, "%s %s model %s\n", GetCheckMark(), verb, Bold.Render(modelID))
}
