package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/skinlog/internal/constants"
	apperrors "github.com/julianstephens/skinlog/internal/errors"
	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/notify"
	"github.com/julianstephens/skinlog/internal/tui/components/catalogview"
	"github.com/julianstephens/skinlog/internal/tui/components/dayview"
	"github.com/julianstephens/skinlog/internal/tui/components/routinelist"
	"github.com/julianstephens/skinlog/internal/validation"
)

// headerHeight is the rows taken by the tab bar and help line.
const headerHeight = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := msg.Height - headerHeight
		m.dayView.SetSize(msg.Width, h)
		m.stashView.SetSize(msg.Width, h)
		m.wishView.SetSize(msg.Width, h)
		m.routineList.SetSize(msg.Width, h)
		return m, nil

	case collectionMsg:
		m.handleCollection(msg)
		return m, nil
	case productsMsg:
		if m.checkChange(msg.change.Kind, msg.change.Err) {
			m.products = msg.change.Items
			m.updateValidationStatus()
		}
		return m, nil
	case routinesMsg:
		if !m.checkChange(msg.change.Kind, msg.change.Err) {
			return m, nil
		}
		m.routines = msg.change.Items
		m.dayView.SetRoutines(m.routines)
		m.updateValidationStatus()
		if msg.change.Kind == notify.Update {
			return m, m.routineList.ApplyChange(m.routines, msg.change.Deletions, msg.change.Insertions)
		}
		return m, m.routineList.SetRoutines(m.routines)
	case applicationsMsg:
		if msg.date.Equal(m.dayView.Date()) && m.checkChange(msg.change.Kind, msg.change.Err) {
			m.dayView.SetApplications(msg.change.Items)
		}
		return m, nil
	case routineLogsMsg:
		if msg.date.Equal(m.dayView.Date()) && m.checkChange(msg.change.Kind, msg.change.Err) {
			m.dayView.SetRoutineLogs(msg.change.Items)
		}
		return m, nil
	case dayChangedMsg:
		m.dayView.SetDate(msg.date)
		m.watchDay(msg.date)
		return m, nil
	case productEventMsg:
		m.handleProductEvent(msg)
		return m, nil
	}

	switch m.state {
	case constants.StateAddProduct, constants.StateEditProduct,
		constants.StateAddApplication, constants.StateStartRoutineLog, constants.StateAddRoutine:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirm(msg)
	case constants.StateProductDetail:
		return m.updateDetail(msg)
	}

	switch msg := msg.(type) {
	case catalogview.AddProductMsg:
		return m, m.openProductForm(msg.Kind)
	case catalogview.ShowProductMsg:
		m.showProduct(msg.Product)
		return m, nil
	case catalogview.RemoveProductMsg:
		m.confirm("Remove "+msg.Product.Name+" from the "+collectionTitle(msg.Kind)+"?", func() error {
			return m.removeFromCollection(msg.Kind, msg.Product.ID)
		})
		return m, nil
	case catalogview.MoveProductMsg:
		m.report(m.store.MoveInCollection(msg.Kind, msg.From, msg.To))
		return m, nil
	case dayview.AddApplicationMsg:
		return m, m.openApplicationForm()
	case dayview.StartRoutineLogMsg:
		return m, m.openRoutineLogForm()
	case dayview.DeleteApplicationMsg:
		m.confirm("Delete this application?", func() error {
			return m.store.DeleteApplication(msg.Application.ID)
		})
		return m, nil
	case dayview.DeleteRoutineLogMsg:
		m.confirm("Delete the "+msg.RoutineLog.Name+" routine log?", func() error {
			return m.store.DeleteRoutineLog(msg.RoutineLog.ID)
		})
		return m, nil
	case routinelist.AddRoutineMsg:
		return m, m.openRoutineForm()
	case routinelist.DeleteRoutineMsg:
		m.confirm("Delete routine "+msg.Routine.Name+"?", func() error {
			return m.store.DeleteRoutine(msg.Routine.ID)
		})
		return m, nil

	case tea.KeyMsg:
		if !m.typing() {
			m.alert = ""
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			case key.Matches(msg, m.keys.Tab):
				m.state = m.nextTab(1)
				return m, nil
			case key.Matches(msg, m.keys.ShiftTab):
				m.state = m.nextTab(-1)
				return m, nil
			}
			if m.state == constants.StateLog {
				switch {
				case key.Matches(msg, m.keys.PrevDay):
					m.report(m.cursor.Step(m.resolver, -1))
					return m, nil
				case key.Matches(msg, m.keys.NextDay):
					m.report(m.cursor.Step(m.resolver, 1))
					return m, nil
				case key.Matches(msg, m.keys.Today):
					m.cursor.Set(m.resolver.Today())
					return m, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateLog:
		m.dayView, cmd = m.dayView.Update(msg)
	case constants.StateStash:
		m.stashView, cmd = m.stashView.Update(msg)
	case constants.StateWishList:
		m.wishView, cmd = m.wishView.Update(msg)
	case constants.StateRoutines:
		m.routineList, cmd = m.routineList.Update(msg)
	}
	return m, cmd
}

func (m Model) nextTab(step int) constants.SessionState {
	for i, t := range tabs {
		if t.state == m.state {
			return tabs[(i+step+len(tabs))%len(tabs)].state
		}
	}
	return constants.StateLog
}

// checkChange surfaces subscription errors and reports whether the
// change carries items.
func (m *Model) checkChange(kind notify.Kind, err error) bool {
	if kind == notify.Error {
		m.report(err)
		return false
	}
	return true
}

// report shows err as an alert when it should interrupt the user.
func (m *Model) report(err error) {
	if msg := apperrors.Alert(err); msg != "" {
		m.alert = msg
	}
}

func (m *Model) handleCollection(msg collectionMsg) {
	if !m.checkChange(msg.change.Kind, msg.change.Err) {
		return
	}
	if msg.change.Kind == notify.Update {
		logger.Debug("Collection changed", "kind", msg.kind,
			"deleted", len(msg.change.Deletions),
			"inserted", len(msg.change.Insertions),
			"modified", len(msg.change.Modifications))
	}
	switch msg.kind {
	case models.CollectionStash:
		m.stash = msg.change.Items
		m.stashView.SetProducts(msg.change.Items)
	case models.CollectionWishList:
		m.wishList = msg.change.Items
		m.wishView.SetProducts(msg.change.Items)
	}
	m.updateValidationStatus()
}

func (m *Model) confirm(prompt string, run func() error) {
	m.pending = &pendingDelete{prompt: prompt, run: run}
	m.previousState = m.state
	m.state = constants.StateConfirmDelete
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if m.pending != nil {
			m.report(m.pending.run())
		}
		m.pending = nil
		m.state = m.previousState
	case key.Matches(keyMsg, m.keys.Cancel):
		m.pending = nil
		m.state = m.previousState
	}
	return m, nil
}

func (m *Model) showProduct(p models.Product) {
	m.detail = &p
	m.detailChanges = nil
	m.detailReturn = m.state
	m.state = constants.StateProductDetail
	m.observeProduct(p.ID)
}

func (m *Model) closeDetail() {
	m.subs.replaceProduct(nil)
	m.detail = nil
	m.detailChanges = nil
	m.state = m.detailReturn
}

func (m *Model) handleProductEvent(msg productEventMsg) {
	if m.detail == nil || m.detail.ID != msg.id {
		return
	}
	switch msg.event.Kind {
	case notify.ProductChanged:
		p := msg.event.Product
		m.detail = &p
		m.detailChanges = msg.event.Changes
	case notify.ProductDeleted:
		m.alert = m.detail.Name + " was deleted"
		if m.state == constants.StateProductDetail {
			m.closeDetail()
		}
	case notify.ProductError:
		m.report(msg.event.Err)
	}
}

func (m Model) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.detail == nil {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Back):
		m.closeDetail()
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Edit):
		return m, m.openEditProductForm(*m.detail)
	case key.Matches(keyMsg, m.keys.Delete):
		p := *m.detail
		m.closeDetail()
		m.confirm("Delete "+p.Name+"? It is removed from every list.", func() error {
			return m.store.DeleteProduct(p.ID)
		})
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.submitForm(); err != nil {
			// Stay in the form so the user can fix the input or cancel.
			var fe validation.FieldErrors
			if errors.As(err, &fe) {
				m.alert = apperrors.Format(err)
			} else {
				m.report(err)
			}
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m.alert = ""
		m.state = m.previousState
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

func (m *Model) submitForm() error {
	switch m.state {
	case constants.StateAddProduct:
		return m.submitProduct()
	case constants.StateEditProduct:
		return m.submitProductEdit()
	case constants.StateAddApplication:
		return m.submitApplication()
	case constants.StateStartRoutineLog:
		return m.submitRoutineLog()
	case constants.StateAddRoutine:
		return m.submitRoutine()
	}
	return nil
}

func collectionTitle(kind models.CollectionKind) string {
	if kind == models.CollectionWishList {
		return "Wish List"
	}
	return "Stash"
}
