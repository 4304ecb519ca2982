package dayview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
)

var (
	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true).
			MarginTop(1)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(7)

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	notesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type AddApplicationMsg struct{}

type StartRoutineLogMsg struct{}

type DeleteApplicationMsg struct {
	Application models.Application
}

type DeleteRoutineLogMsg struct {
	RoutineLog models.RoutineLog
}

type KeyMap struct {
	Apply  key.Binding
	Start  key.Binding
	Delete key.Binding
	Up     key.Binding
	Down   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Apply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "log application"),
		),
		Start: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "start routine log"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
		),
	}
}

// entry is one selectable row: an application or a routine log.
type entry struct {
	app *models.Application
	rl  *models.RoutineLog
}

type Model struct {
	viewport    viewport.Model
	keys        KeyMap
	loc         *time.Location
	date        time.Time
	loaded      bool
	apps        []models.Application
	routineLogs []models.RoutineLog
	routines    map[string]string // routine id -> name
	selected    int
	width       int
	height      int
}

func New(loc *time.Location, width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		loc:      loc,
		routines: make(map[string]string),
	}
}

// SetDate switches the view to another day. Contents are cleared until
// the new day's data arrives.
func (m *Model) SetDate(date time.Time) {
	m.date = date
	m.loaded = false
	m.apps = nil
	m.routineLogs = nil
	m.selected = 0
	m.render()
}

func (m Model) Date() time.Time {
	return m.date
}

func (m *Model) SetApplications(apps []models.Application) {
	m.apps = apps
	m.loaded = true
	m.clamp()
	m.render()
}

func (m *Model) SetRoutineLogs(logs []models.RoutineLog) {
	m.routineLogs = logs
	m.clamp()
	m.render()
}

func (m *Model) SetRoutines(routines []models.Routine) {
	m.routines = make(map[string]string, len(routines))
	for _, r := range routines {
		m.routines[r.ID] = r.Name
	}
	m.render()
}

// Len is the number of entries shown for the day.
func (m Model) Len() int {
	return len(m.apps) + len(m.routineLogs)
}

func (m Model) entries() []entry {
	out := make([]entry, 0, len(m.apps)+len(m.routineLogs))
	for i := range m.apps {
		out = append(out, entry{app: &m.apps[i]})
	}
	for i := range m.routineLogs {
		out = append(out, entry{rl: &m.routineLogs[i]})
	}
	return out
}

func (m *Model) clamp() {
	n := len(m.apps) + len(m.routineLogs)
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		entries := m.entries()
		switch {
		case key.Matches(keyMsg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
				m.render()
			}
			return m, nil
		case key.Matches(keyMsg, m.keys.Down):
			if m.selected < len(entries)-1 {
				m.selected++
				m.render()
			}
			return m, nil
		case key.Matches(keyMsg, m.keys.Apply):
			return m, func() tea.Msg { return AddApplicationMsg{} }
		case key.Matches(keyMsg, m.keys.Start):
			return m, func() tea.Msg { return StartRoutineLogMsg{} }
		case key.Matches(keyMsg, m.keys.Delete):
			if m.selected >= len(entries) {
				return m, nil
			}
			e := entries[m.selected]
			if e.app != nil {
				app := *e.app
				return m, func() tea.Msg { return DeleteApplicationMsg{Application: app} }
			}
			rl := *e.rl
			return m, func() tea.Msg { return DeleteRoutineLogMsg{RoutineLog: rl} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) render() {
	var b strings.Builder
	b.WriteString(dateStyle.Render(m.date.In(m.loc).Format("Monday, January 2 2006")))
	b.WriteString("\n")

	if !m.loaded {
		b.WriteString("\nLoading...")
		m.viewport.SetContent(b.String())
		return
	}

	i := 0
	b.WriteString(headingStyle.Render("Applications"))
	b.WriteString("\n")
	if len(m.apps) == 0 {
		b.WriteString(notesStyle.Render("  nothing logged. Press 'a' to add."))
		b.WriteString("\n")
	}
	for _, app := range m.apps {
		name := "(no routine)"
		if app.RoutineID != nil {
			if n, ok := m.routines[*app.RoutineID]; ok {
				name = n
			}
		}
		b.WriteString(m.line(i, app.Time, name, app.Notes))
		i++
	}

	b.WriteString(headingStyle.Render("Routine logs"))
	b.WriteString("\n")
	if len(m.routineLogs) == 0 {
		b.WriteString(notesStyle.Render("  none. Press 'r' to start one."))
		b.WriteString("\n")
	}
	for _, rl := range m.routineLogs {
		names := make([]string, len(rl.Products))
		for j, p := range rl.Products {
			names[j] = p.Name
		}
		detail := strings.Join(names, ", ")
		if rl.Notes != "" {
			detail = strings.TrimSpace(detail + "  " + rl.Notes)
		}
		b.WriteString(m.line(i, rl.Time, rl.Name, detail))
		i++
	}

	m.viewport.SetContent(b.String())
}

func (m Model) line(i int, at time.Time, title, detail string) string {
	clock := timeStyle.Render(at.In(m.loc).Format(constants.TimeFormat))
	text := entryStyle.Render(title)
	if i == m.selected {
		text = selectedStyle.Render(title)
	}
	out := fmt.Sprintf("  %s %s", clock, text)
	if detail != "" {
		out += " " + notesStyle.Render(detail)
	}
	return out + "\n"
}
