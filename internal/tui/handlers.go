package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/utils"
	"github.com/julianstephens/skinlog/internal/validation"
)

func (m *Model) openForm(state constants.SessionState) tea.Cmd {
	m.previousState = m.state
	m.state = state
	return m.form.Init()
}

func (m *Model) openProductForm(kind models.CollectionKind) tea.Cmd {
	m.productKind = kind
	m.productForm = newProductFormModel(validation.ProductInput{})
	m.form = NewProductForm(m.productForm)
	return m.openForm(constants.StateAddProduct)
}

func (m *Model) openEditProductForm(p models.Product) tea.Cmd {
	m.productForm = newProductFormModel(validation.InputFrom(p))
	m.form = NewProductForm(m.productForm)
	return m.openForm(constants.StateEditProduct)
}

func (m *Model) openApplicationForm() tea.Cmd {
	m.applicationForm = &ApplicationFormModel{Time: m.defaultClock()}
	m.form = NewApplicationForm(m.applicationForm, m.routines)
	return m.openForm(constants.StateAddApplication)
}

func (m *Model) openRoutineLogForm() tea.Cmd {
	now := m.resolver.Today()
	m.routineLogForm = &RoutineLogFormModel{
		Name: defaultRoutineLogName(now),
		Time: m.defaultClock(),
	}
	m.form = NewRoutineLogForm(m.routineLogForm, m.routines)
	return m.openForm(constants.StateStartRoutineLog)
}

func (m *Model) openRoutineForm() tea.Cmd {
	m.routineForm = &RoutineFormModel{}
	m.form = NewRoutineForm(m.routineForm, m.routines)
	return m.openForm(constants.StateAddRoutine)
}

// defaultClock is the current time of day for today and noon otherwise.
func (m Model) defaultClock() string {
	loc := m.resolver.Location()
	now := m.resolver.Today()
	if utils.DayKey(m.cursor.Get(), loc) == utils.DayKey(now, loc) {
		return now.Format(constants.TimeFormat)
	}
	return "12:00"
}

// at places clock on the selected day.
func (m Model) at(clock string) (time.Time, error) {
	return utils.AtTimeOfDay(m.cursor.Get().In(m.resolver.Location()), clock)
}

func (m *Model) submitProduct() error {
	in, err := m.productForm.Input()
	if err != nil {
		return err
	}
	now := time.Now()
	p, err := in.Apply(models.Product{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return err
	}
	if err := m.store.AddProduct(p); err != nil {
		return err
	}
	return m.store.AddToCollection(m.productKind, p.ID)
}

// submitProductEdit writes each changed field as its own change.
func (m *Model) submitProductEdit() error {
	if m.detail == nil {
		return nil
	}
	in, err := m.productForm.Input()
	if err != nil {
		return err
	}
	old := *m.detail
	updated, err := in.Apply(old)
	if err != nil {
		return err
	}
	for _, change := range models.DiffProduct(old, updated) {
		if err := m.store.ApplyProductChange(old.ID, change); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) submitApplication() error {
	fm := m.applicationForm
	at, err := m.at(fm.Time)
	if err != nil {
		return err
	}
	log, err := m.resolver.ResolveDay(m.cursor.Get())
	if err != nil {
		return err
	}
	app := models.Application{
		ID:    uuid.NewString(),
		Notes: strings.TrimSpace(fm.Notes),
		Time:  at,
	}
	if fm.RoutineID != "" {
		id := fm.RoutineID
		app.RoutineID = &id
	}
	return m.store.AddApplication(log.ID, app)
}

// submitRoutineLog resolves the named routine log on the selected day and
// optionally seeds it with a routine's products.
func (m *Model) submitRoutineLog() error {
	fm := m.routineLogForm
	at, err := m.at(fm.Time)
	if err != nil {
		return err
	}
	rl, err := m.resolver.ResolveRoutineLog(at, strings.TrimSpace(fm.Name))
	if err != nil {
		return err
	}

	if fm.FromRoutine != "" {
		routine, err := m.store.GetRoutine(fm.FromRoutine)
		if err != nil {
			return err
		}
		for _, p := range routine.Products {
			err := m.store.AddRoutineLogProduct(rl.ID, p.ID)
			if errors.Is(err, storage.ErrDuplicate) {
				logger.Debug("Product already in routine log", "product", p.ID, "routineLog", rl.ID)
				continue
			}
			if err != nil {
				return err
			}
		}
	}

	if notes := strings.TrimSpace(fm.Notes); notes != "" {
		rl, err = m.store.GetRoutineLog(rl.ID)
		if err != nil {
			return err
		}
		rl.Notes = notes
		return m.store.UpdateRoutineLog(rl)
	}
	return nil
}

func (m *Model) submitRoutine() error {
	return m.store.AddRoutine(models.Routine{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(m.routineForm.Name),
		CreatedAt: time.Now(),
	})
}

// removeFromCollection removes productID at its current position, which may
// have moved since the removal was requested.
func (m *Model) removeFromCollection(kind models.CollectionKind, productID string) error {
	c, err := m.store.GetCollection(kind)
	if err != nil {
		return err
	}
	for i, p := range c.Products {
		if p.ID == productID {
			return m.store.RemoveFromCollection(kind, i)
		}
	}
	return fmt.Errorf("product %s in %s: %w", productID, kind, storage.ErrNotFound)
}
