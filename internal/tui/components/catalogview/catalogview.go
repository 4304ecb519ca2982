// Package catalogview renders a product collection grouped into category
// sections with an incremental search box.
package catalogview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/skinlog/internal/catalog"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/validation"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginTop(1)

	rowStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(lipgloss.Color("252"))

	selectedStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	brandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	expiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Italic(true)
)

var timeNow = time.Now

type AddProductMsg struct {
	Kind models.CollectionKind
}

// RemoveProductMsg asks to take the product at Index out of the collection.
type RemoveProductMsg struct {
	Kind    models.CollectionKind
	Index   int
	Product models.Product
}

type MoveProductMsg struct {
	Kind     models.CollectionKind
	From, To int
}

type ShowProductMsg struct {
	Product models.Product
}

type KeyMap struct {
	Add      key.Binding
	Remove   key.Binding
	Search   key.Binding
	Show     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Up       key.Binding
	Down     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Show: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move down"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
		),
	}
}

type Model struct {
	kind     models.CollectionKind
	products []models.Product // collection order
	sections []catalog.Section
	visible  []models.Product // flattened sections, display order
	selected int
	search   textinput.Model
	keys     KeyMap
	width    int
	height   int
}

func New(kind models.CollectionKind, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "name or brand"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return Model{
		kind:   kind,
		search: ti,
		keys:   DefaultKeyMap(),
		width:  width,
		height: height,
	}
}

// SetProducts replaces the collection contents, keeping the current
// search term and, when possible, the selected product.
func (m *Model) SetProducts(products []models.Product) {
	var selectedID string
	if p, ok := m.Selected(); ok {
		selectedID = p.ID
	}
	m.products = products
	m.rebuild()
	for i, p := range m.visible {
		if p.ID == selectedID {
			m.selected = i
			return
		}
	}
	m.clamp()
}

func (m *Model) rebuild() {
	m.sections = catalog.Sections(m.products, m.search.Value())
	m.visible = nil
	for _, s := range m.sections {
		m.visible = append(m.visible, s.Products...)
	}
}

func (m *Model) clamp() {
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) Selected() (models.Product, bool) {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return models.Product{}, false
	}
	return m.visible[m.selected], true
}

// Searching reports whether the search box has focus.
func (m Model) Searching() bool {
	return m.search.Focused()
}

func (m Model) Term() string {
	return m.search.Value()
}

func (m Model) Sections() []catalog.Section {
	return m.sections
}

// position returns the product's index in collection order.
func (m Model) position(id string) int {
	for i, p := range m.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.search.Focused() {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			m.search.Blur()
			m.rebuild()
			m.clamp()
			return m, nil
		case tea.KeyEnter:
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.rebuild()
		m.clamp()
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.selected < len(m.visible)-1 {
			m.selected++
		}
	case key.Matches(keyMsg, m.keys.Search):
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(keyMsg, m.keys.Add):
		kind := m.kind
		return m, func() tea.Msg { return AddProductMsg{Kind: kind} }
	case key.Matches(keyMsg, m.keys.Show):
		if p, ok := m.Selected(); ok {
			return m, func() tea.Msg { return ShowProductMsg{Product: p} }
		}
	case key.Matches(keyMsg, m.keys.Remove):
		if p, ok := m.Selected(); ok {
			rm := RemoveProductMsg{Kind: m.kind, Index: m.position(p.ID), Product: p}
			return m, func() tea.Msg { return rm }
		}
	case key.Matches(keyMsg, m.keys.MoveUp), key.Matches(keyMsg, m.keys.MoveDown):
		return m, m.move(key.Matches(keyMsg, m.keys.MoveUp))
	}
	return m, nil
}

// move shifts the selected product one place in collection order, past
// neighbours of other categories, so that it changes place within its
// section.
func (m Model) move(up bool) tea.Cmd {
	p, ok := m.Selected()
	if !ok {
		return nil
	}
	from := m.position(p.ID)
	to := -1
	if up {
		for i := from - 1; i >= 0; i-- {
			if m.products[i].Category == p.Category {
				to = i
				break
			}
		}
	} else {
		for i := from + 1; i < len(m.products); i++ {
			if m.products[i].Category == p.Category {
				to = i
				break
			}
		}
	}
	if to < 0 {
		return nil
	}
	msg := MoveProductMsg{Kind: m.kind, From: from, To: to}
	return func() tea.Msg { return msg }
}

func (m Model) View() string {
	var b strings.Builder
	if m.search.Focused() || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	if len(m.products) == 0 {
		b.WriteString("\n  Nothing here yet.\n  Press 'a' to add a product.")
		return b.String()
	}
	if len(m.visible) == 0 {
		fmt.Fprintf(&b, "\n  No products match %q.", m.search.Value())
		return b.String()
	}

	i := 0
	for _, s := range m.sections {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d)", s.Title, len(s.Products))))
		b.WriteString("\n")
		for _, p := range s.Products {
			line := m.row(p)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("› " + line))
			} else {
				b.WriteString(rowStyle.Render(line))
			}
			b.WriteString("\n")
			i++
		}
	}
	return b.String()
}

func (m Model) row(p models.Product) string {
	line := p.Name
	if p.Brand != "" {
		line += " " + brandStyle.Render(p.Brand)
	}
	if p.PriceCents != nil {
		line += " " + brandStyle.Render("$"+validation.FormatPrice(*p.PriceCents))
	}
	if p.Expired(timeNow()) {
		line += " " + expiredStyle.Render("expired")
	}
	return line
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = width - 4
}
