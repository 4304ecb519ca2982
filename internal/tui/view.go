package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/validation"
)

var timeNow = time.Now

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateLog:
		content = m.dayView.View()
	case constants.StateStash:
		content = docStyle.Render(m.stashView.View())
	case constants.StateWishList:
		content = docStyle.Render(m.wishView.View())
	case constants.StateRoutines:
		content = docStyle.Render(m.routineList.View())
	case constants.StateProductDetail:
		content = m.viewProduct()
	case constants.StateAddProduct:
		content = m.viewForm("New product in the " + collectionTitle(m.productKind))
	case constants.StateEditProduct:
		content = m.viewForm("Edit product")
	case constants.StateAddApplication:
		content = m.viewForm("Log application")
	case constants.StateStartRoutineLog:
		content = m.viewForm("Start routine log")
	case constants.StateAddRoutine:
		content = m.viewForm("New routine")
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	parts := []string{m.viewTabs(), content}
	if m.alert != "" {
		parts = append(parts, alertStyle.Render(m.alert))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	active := m.state
	switch m.state {
	case constants.StateProductDetail, constants.StateEditProduct:
		active = m.detailReturn
	case constants.StateAddProduct, constants.StateAddApplication, constants.StateStartRoutineLog,
		constants.StateAddRoutine, constants.StateConfirmDelete:
		active = m.previousState
	}

	var tabViews []string
	for _, t := range tabs {
		if t.state == active {
			tabViews = append(tabViews, activeTabStyle.Render(t.title))
		} else {
			tabViews = append(tabViews, inactiveTabStyle.Render(t.title))
		}
	}
	if m.validationWarning != "" {
		tabViews = append(tabViews, warningStyle.Render(m.validationWarning))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabViews...)
}

func (m Model) viewForm(title string) string {
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		m.form.View(),
	))
}

func (m Model) viewConfirmDelete() string {
	prompt := "Are you sure?"
	if m.pending != nil {
		prompt = m.pending.prompt
	}
	return lipgloss.Place(m.width, m.height-headerHeight,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(prompt),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewProduct() string {
	if m.detail == nil {
		return ""
	}
	p := *m.detail

	changed := make(map[models.ProductField]bool, len(m.detailChanges))
	for _, c := range m.detailChanges {
		changed[c.Field()] = true
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString("\n\n")
	row := func(field models.ProductField, label, value string) {
		if value == "" {
			return
		}
		l := labelStyle.Render(label)
		if changed[field] {
			value = changedStyle.Render(value)
		}
		fmt.Fprintf(&b, "%s %s\n", l, value)
	}

	row(models.FieldBrand, "Brand", p.Brand)
	row(models.FieldCategory, "Category", string(p.Category))
	if p.PriceCents != nil {
		row(models.FieldPrice, "Price", "$"+validation.FormatPrice(*p.PriceCents))
	}
	if p.Rating != nil && *p.Rating >= 0 && *p.Rating <= 5 {
		row(models.FieldRating, "Rating", strings.Repeat("★", *p.Rating)+strings.Repeat("☆", 5-*p.Rating))
	}
	if p.ExpirationDate != nil {
		exp := p.ExpirationDate.Format(constants.DateFormat)
		if p.Expired(timeNow()) {
			exp += " (expired)"
		}
		row(models.FieldExpirationDate, "Expires", exp)
	}
	if p.NumberInStash != nil {
		row(models.FieldNumberInStash, "In stash", fmt.Sprint(*p.NumberInStash))
	}
	if p.NumberUsed != nil {
		row(models.FieldNumberUsed, "Used up", fmt.Sprint(*p.NumberUsed))
	}
	if p.WillRepurchase != nil {
		v := "no"
		if *p.WillRepurchase {
			v = "yes"
		}
		row(models.FieldWillRepurchase, "Repurchase", v)
	}
	if p.Link != nil {
		row(models.FieldLink, "Link", *p.Link)
	}
	if p.Ingredients != nil {
		row(models.FieldIngredients, "Ingredients", *p.Ingredients)
	}
	return docStyle.Render(b.String())
}
