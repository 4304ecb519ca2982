package routinelist

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/skinlog/internal/models"
)

type AddRoutineMsg struct{}

type DeleteRoutineMsg struct {
	Routine models.Routine
}

type Item struct {
	Routine models.Routine
}

func (i Item) Title() string { return i.Routine.Name }
func (i Item) Description() string {
	if len(i.Routine.Products) == 0 {
		return "no products"
	}
	names := make([]string, len(i.Routine.Products))
	for j, p := range i.Routine.Products {
		names[j] = p.Name
	}
	return fmt.Sprintf("%d | %s", len(names), strings.Join(names, ", "))
}
func (i Item) FilterValue() string { return i.Routine.Name }

type KeyMap struct {
	Add    key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(routines []models.Routine, width, height int) Model {
	l := list.New(items(routines), list.NewDefaultDelegate(), width, height)
	l.Title = "Routines"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func items(routines []models.Routine) []list.Item {
	out := make([]list.Item, len(routines))
	for i, r := range routines {
		out[i] = Item{Routine: r}
	}
	return out
}

func (m *Model) SetRoutines(routines []models.Routine) tea.Cmd {
	return m.list.SetItems(items(routines))
}

// ApplyChange replaces the routines and moves the selection so it stays on
// the same routine. deletions index the previous routines and insertions
// the new ones. A deleted selection lands on the routine that followed it.
func (m *Model) ApplyChange(routines []models.Routine, deletions, insertions []int) tea.Cmd {
	if m.list.FilterState() != list.Unfiltered {
		return m.SetRoutines(routines)
	}
	sel := m.list.Index()
	pos := sel
	for _, d := range deletions {
		if d < sel {
			pos--
		}
	}
	ins := slices.Clone(insertions)
	slices.Sort(ins)
	for _, i := range ins {
		if i <= pos {
			pos++
		}
	}

	cmd := m.list.SetItems(items(routines))
	if pos >= len(routines) {
		pos = len(routines) - 1
	}
	if pos >= 0 {
		m.list.Select(pos)
	}
	return cmd
}

// Selected returns the highlighted routine.
func (m Model) Selected() (models.Routine, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Routine, ok
}

// Filtering reports whether the list's filter prompt has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddRoutineMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteRoutineMsg{Routine: i.Routine} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No routines yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
