package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/latest"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
	"github.com/idlab-discover/carbonscope-cli/internal/source"
)

// BrowserConfig configures the interactive model browser.
type BrowserConfig struct {
	Source source.ModelSource
	// State is the starting query; it is modified in place.
	State *query.State
}

// pageMsg carries one model page back to the browser, tagged with the
// sequence of the request that produced it.
type pageMsg struct {
	seq  uint64
	page query.Page[catalog.Model]
	err  error
}

// browserModel is the Bubble Tea model for the model browser.
type browserModel struct {
	ctx   context.Context
	src   source.ModelSource
	st    *query.State
	guard *latest.Guard

	table   table.Model
	search  textinput.Model
	spinner spinner.Model

	page     query.Page[catalog.Model]
	loading  bool
	err      error
	selected *catalog.Model
	quitting bool
	width    int
	height   int
}

var browserColumns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Model", Width: 24},
	{Title: "Params", Width: 8},
	{Title: "Architecture", Width: 20},
	{Title: "Type", Width: 16},
	{Title: "Training CO2", Width: 13},
	{Title: "Score", Width: 6},
}

// sortKeys maps the s key cycle to fields, in display order.
var sortKeys = []string{
	catalog.FieldName,
	catalog.FieldParameters,
	catalog.FieldTrainingCO2,
	catalog.FieldOverallScore,
	catalog.FieldArchitecture,
	catalog.FieldDateSubmitted,
}

func newBrowser(ctx context.Context, cfg BrowserConfig) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "Search models..."
	ti.CharLimit = 100
	ti.SetWidth(40)
	ti.SetValue(cfg.State.Search)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorSecondary)

	t := table.New(
		table.WithColumns(browserColumns),
		table.WithFocused(true),
		table.WithHeight(cfg.State.PageSize),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(ColorPrimary).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#111827")).
		Background(ColorHighlight)
	t.SetStyles(styles)

	return &browserModel{
		ctx:     ctx,
		src:     cfg.Source,
		st:      cfg.State,
		guard:   &latest.Guard{},
		table:   t,
		search:  ti,
		spinner: s,
		width:   100,
		height:  30,
	}
}

// load starts a fetch for the current state. Any fetch still in flight is
// cancelled and its response will be ignored.
func (m *browserModel) load() tea.Cmd {
	ctx, seq := m.guard.Begin(m.ctx)
	st := m.st.Clone()
	m.loading = true
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		page, err := m.src.Models(ctx, st)
		return pageMsg{seq: seq, page: page, err: err}
	})
}

// Init initializes the model
func (m *browserModel) Init() tea.Cmd {
	return m.load()
}

// Update handles messages
func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageMsg:
		if !m.guard.Current(msg.seq) {
			return m, nil
		}
		m.guard.Done(msg.seq)
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.page = query.Page[catalog.Model]{Page: m.st.Page, PageSize: m.st.PageSize}
		} else {
			m.page = msg.page
		}
		m.table.SetRows(browserRows(m.page.Items))
		m.table.SetCursor(0)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(3, min(m.st.PageSize, msg.Height-9)))
		return m, nil

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m *browserModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quit()
		return m, tea.Quit
	case "enter", "esc", "down":
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.st.Search {
		m.st.SetSearch(q)
		return m, tea.Batch(cmd, m.load())
	}
	return m, cmd
}

func (m *browserModel) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.quit()
		return m, tea.Quit
	case "enter":
		if i := m.table.Cursor(); i >= 0 && i < len(m.page.Items) {
			sel := m.page.Items[i]
			m.selected = &sel
			m.quit()
			return m, tea.Quit
		}
		return m, nil
	case "/":
		m.table.Blur()
		return m, m.search.Focus()
	case "s":
		m.cycleSort()
		return m, m.load()
	case "S":
		_ = m.st.Toggle(m.st.Sort.Field)
		return m, m.load()
	case "n":
		if m.st.Next(m.page.Total) {
			return m, m.load()
		}
		return m, nil
	case "p":
		if m.st.Prev() {
			return m, m.load()
		}
		return m, nil
	case "z":
		m.cyclePageSize()
		return m, m.load()
	case "r":
		m.st.Reset()
		m.search.SetValue("")
		return m, m.load()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *browserModel) quit() {
	m.quitting = true
	m.guard.Stop()
}

// cycleSort moves to the next sortable field, ascending.
func (m *browserModel) cycleSort() {
	i := slices.Index(sortKeys, m.st.Sort.Field)
	next := sortKeys[(i+1)%len(sortKeys)]
	_ = m.st.SetSort(next, query.Ascending)
	m.st.SetPage(1)
}

func (m *browserModel) cyclePageSize() {
	i := slices.Index(query.PageSizes, m.st.PageSize)
	_ = m.st.SetPageSize(query.PageSizes[(i+1)%len(query.PageSizes)])
	m.table.SetHeight(max(3, min(m.st.PageSize, m.height-9)))
}

func browserRows(models []catalog.Model) []table.Row {
	rows := make([]table.Row, len(models))
	for i, mo := range models {
		rows[i] = table.Row{
			mo.ID,
			mo.Name,
			formatParams(mo.ParametersBillions),
			orDash(mo.Architecture),
			orDash(mo.ModelType),
			formatKg(mo.TrainingCO2Kg),
			formatFloat(mo.OverallScore, 1),
		}
	}
	return rows
}

// View renders the model
func (m *browserModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	return tea.NewView(m.render())
}

func (m *browserModel) render() string {
	var b strings.Builder
	b.WriteString(Title.Render("CarbonScope models"))
	b.WriteString("\n\n")
	b.WriteString(Dim.Render("Search: "))
	b.WriteString(m.search.View())
	if m.loading {
		b.WriteString(" " + m.spinner.View() + Dim.Render(" loading"))
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil && !m.loading:
		b.WriteString(LoadError("models", m.err))
	case len(m.page.Items) == 0 && !m.loading:
		b.WriteString(EmptyState("models", m.st))
	default:
		b.WriteString(m.table.View())
	}
	b.WriteString("\n\n")

	b.WriteString(PageFooter(m.page.Page, m.page.PageCount(), m.page.Total, m.st))
	b.WriteString("\n")
	help := lipgloss.NewStyle().Foreground(ColorTextDim)
	if m.search.Focused() {
		b.WriteString(help.Render("type to search · enter/esc: back to list"))
	} else {
		b.WriteString(help.Render("↑/↓: move · enter: details · /: search · s/S: sort field/direction · n/p: page · z: page size · r: reset · esc: quit"))
	}
	return b.String()
}

// RunBrowser runs the interactive browser and returns the model the user
// picked with enter. Leaving without a pick returns apperr.ErrCancelled.
func RunBrowser(ctx context.Context, cfg BrowserConfig) (*catalog.Model, error) {
	if cfg.Source == nil || cfg.State == nil {
		return nil, errors.New("browser needs a source and a state")
	}
	p := tea.NewProgram(newBrowser(ctx, cfg), tea.WithContext(ctx))
	res, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	m := res.(*browserModel)
	if m.selected == nil {
		return nil, apperr.ErrCancelled
	}
	return m.selected, nil
}
