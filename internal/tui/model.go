package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/daylog"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/notify"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/tui/components/catalogview"
	"github.com/julianstephens/skinlog/internal/tui/components/dayview"
	"github.com/julianstephens/skinlog/internal/tui/components/routinelist"
	"github.com/julianstephens/skinlog/internal/validation"
)

// tabs are the top-level views in display order.
var tabs = []struct {
	title string
	state constants.SessionState
}{
	{"Log", constants.StateLog},
	{"Stash", constants.StateStash},
	{"Wish List", constants.StateWishList},
	{"Routines", constants.StateRoutines},
}

// pendingDelete is the action behind the confirmation prompt.
type pendingDelete struct {
	prompt string
	run    func() error
}

type Model struct {
	store    storage.Provider
	resolver *daylog.Resolver
	hub      *notify.Hub
	cursor   *daylog.Cursor
	bridge   *Bridge
	subs     *subscriptions

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model

	dayView     dayview.Model
	stashView   catalogview.Model
	wishView    catalogview.Model
	routineList routinelist.Model

	// latest results from the catalog subscriptions
	products []models.Product
	stash    []models.Product
	wishList []models.Product
	routines []models.Routine

	detail        *models.Product
	detailChanges []models.ProductFieldChange
	detailReturn  constants.SessionState

	form            *huh.Form
	productForm     *ProductFormModel
	productKind     models.CollectionKind
	applicationForm *ApplicationFormModel
	routineLogForm  *RoutineLogFormModel
	routineForm     *RoutineFormModel
	pending         *pendingDelete

	alert               string
	validationWarning   string
	validationConflicts []validation.Conflict
	quitting            bool
	width               int
	height              int
}

// NewModel builds the TUI over an opened store. Hub deliveries reach the
// program through bridge, which the caller runs.
func NewModel(store storage.Provider, resolver *daylog.Resolver, hub *notify.Hub, bridge *Bridge) Model {
	cursor := daylog.NewCursor(resolver.Today())
	dv := dayview.New(resolver.Location(), 0, 0)
	dv.SetDate(cursor.Get())

	return Model{
		store:       store,
		resolver:    resolver,
		hub:         hub,
		cursor:      cursor,
		bridge:      bridge,
		subs:        &subscriptions{},
		state:       constants.StateLog,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		dayView:     dv,
		stashView:   catalogview.New(models.CollectionStash, 0, 0),
		wishView:    catalogview.New(models.CollectionWishList, 0, 0),
		routineList: routinelist.New(nil, 0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	m.subscribe()
	return nil
}

// Close cancels every subscription. The model must not be used afterwards.
func (m Model) Close() {
	m.subs.stopAll()
}

// Cursor is the date shared by the day views.
func (m Model) Cursor() *daylog.Cursor {
	return m.cursor
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateLog:
		dk := m.dayView.Keys()
		keys = append(keys, m.keys.PrevDay, m.keys.NextDay, dk.Apply, dk.Start, dk.Delete)
	case constants.StateStash, constants.StateWishList:
		ck := m.stashView.Keys()
		keys = append(keys, ck.Search, ck.Add, ck.Remove, ck.Show)
	case constants.StateRoutines:
		rk := m.routineList.Keys()
		keys = append(keys, rk.Add, rk.Delete)
	case constants.StateProductDetail:
		keys = []key.Binding{m.keys.Back, m.keys.Edit, m.keys.Delete}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case constants.StateLog:
		dk := m.dayView.Keys()
		actions = []key.Binding{m.keys.PrevDay, m.keys.NextDay, m.keys.Today, dk.Apply, dk.Start, dk.Delete}
	case constants.StateStash, constants.StateWishList:
		ck := m.stashView.Keys()
		actions = []key.Binding{ck.Search, ck.Add, ck.Remove, ck.Show, ck.MoveUp, ck.MoveDown}
	case constants.StateRoutines:
		rk := m.routineList.Keys()
		actions = []key.Binding{rk.Add, rk.Delete}
	case constants.StateProductDetail:
		actions = []key.Binding{m.keys.Back, m.keys.Edit, m.keys.Delete}
	}

	return [][]key.Binding{global, actions}
}

// updateValidationStatus re-checks the catalog snapshot held by the model.
func (m *Model) updateValidationStatus() {
	result := validation.New().ValidateCatalog(validation.Catalog{
		Products: m.products,
		Stash:    m.stash,
		WishList: m.wishList,
		Routines: m.routines,
	})
	m.validationConflicts = result.Conflicts
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

// typing reports whether keystrokes belong to a text input.
func (m Model) typing() bool {
	switch m.state {
	case constants.StateStash:
		return m.stashView.Searching()
	case constants.StateWishList:
		return m.wishView.Searching()
	case constants.StateRoutines:
		return m.routineList.Filtering()
	}
	return false
}
