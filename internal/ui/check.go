package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/idlab-discover/carbonscope-cli/internal/export"
)

// CheckUI renders an AIBOM carbon completeness report.
type CheckUI struct {
	writer io.Writer
	quiet  bool
}

func NewCheckUI(w io.Writer, quiet bool) *CheckUI { return &CheckUI{writer: w, quiet: quiet} }

func (u *CheckUI) Print(r export.CheckReport) {
	mark := GetCheckMark()
	if !r.Valid {
		mark = GetCrossMark()
	}
	fmt.Fprintln(u.writer, mark+" "+r.Summary())
	if u.quiet {
		return
	}
	rows := make([][]string, len(r.Models))
	for i, m := range r.Models {
		rows[i] = []string{
			m.Name,
			Bar(m.Score, 1, 10, ColorSuccess) + " " + formatFloat(m.Score*100, 1) + "%",
			fmt.Sprintf("%d/%d", m.Passed, m.Total),
			missing(m.MissingRequired, Error),
			missing(m.MissingOptional, Dim),
		}
	}
	fmt.Fprintln(u.writer, newTable([]string{"Model", "Score", "Fields", "Missing required", "Missing optional"}, rows).String())
}

func missing(keys []string, style styleWrapper) string {
	if len(keys) == 0 {
		return Dim.Render("-")
	}
	return style.Render(strings.Join(keys, ", "))
}
