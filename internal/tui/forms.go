package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/skinlog/internal/catalog"
	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/utils"
	"github.com/julianstephens/skinlog/internal/validation"
)

// ProductFormModel backs the add and edit product forms.
type ProductFormModel struct {
	Name        string
	Brand       string
	Category    string
	Price       string
	Link        string
	Expiration  string
	Ingredients string
	Rating      string
	Repurchase  bool

	base validation.ProductInput // fields the form does not show
}

func newProductFormModel(in validation.ProductInput) *ProductFormModel {
	fm := &ProductFormModel{
		Name:        in.Name,
		Brand:       in.Brand,
		Category:    in.Category,
		Price:       in.Price,
		Link:        in.Link,
		Expiration:  in.ExpirationDate,
		Ingredients: in.Ingredients,
		base:        in,
	}
	if in.Rating != nil {
		fm.Rating = strconv.Itoa(*in.Rating)
	}
	if in.WillRepurchase != nil {
		fm.Repurchase = *in.WillRepurchase
	}
	if fm.Category == "" {
		fm.Category = string(models.CategoryCleanser)
	}
	return fm
}

// Input converts the form back into a product input.
func (fm *ProductFormModel) Input() (validation.ProductInput, error) {
	in := fm.base
	in.Name = fm.Name
	in.Brand = fm.Brand
	in.Category = fm.Category
	in.Price = strings.TrimSpace(fm.Price)
	in.Link = strings.TrimSpace(fm.Link)
	in.ExpirationDate = strings.TrimSpace(fm.Expiration)
	in.Ingredients = fm.Ingredients

	in.Rating = nil
	if s := strings.TrimSpace(fm.Rating); s != "" {
		r, err := strconv.Atoi(s)
		if err != nil {
			return in, fmt.Errorf("rating must be a number")
		}
		in.Rating = &r
	}

	if fm.base.WillRepurchase != nil || fm.Repurchase {
		repurchase := fm.Repurchase
		in.WillRepurchase = &repurchase
	}
	return in, nil
}

type ApplicationFormModel struct {
	RoutineID string
	Time      string
	Notes     string
}

type RoutineLogFormModel struct {
	Name        string
	Time        string
	FromRoutine string
	Notes       string
}

type RoutineFormModel struct {
	Name string
}

func validateClock(s string) error {
	if !utils.ValidateTimeFormat(s) {
		return fmt.Errorf("invalid time format, use HH:MM")
	}
	return nil
}

func routineOptions(routines []models.Routine, none string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption(none, "")}
	for _, r := range routines {
		opts = append(opts, huh.NewOption(r.Name, r.ID))
	}
	return opts
}

// NewProductForm creates the form for adding or editing a product.
func NewProductForm(fm *ProductFormModel) *huh.Form {
	categories := make([]huh.Option[string], 0, len(catalog.Buckets))
	for _, b := range catalog.Buckets {
		categories = append(categories, huh.NewOption(b.Title, string(b.Category)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Brand").
				Value(&fm.Brand),
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&fm.Category),
			huh.NewInput().
				Title("Price").
				Description("e.g. 24.50, leave empty if unknown").
				Value(&fm.Price).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := validation.ParsePrice(strings.TrimSpace(s))
					return err
				}),
			huh.NewInput().
				Title("Rating (0-5)").
				Value(&fm.Rating).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if i < 0 || i > 5 {
						return fmt.Errorf("rating must be 0-5")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Expiration (YYYY-MM-DD)").
				Value(&fm.Expiration).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := time.Parse(constants.DateFormat, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("invalid date format, use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Link").
				Value(&fm.Link),
			huh.NewText().
				Title("Ingredients").
				Value(&fm.Ingredients),
			huh.NewConfirm().
				Title("Will repurchase").
				Value(&fm.Repurchase),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewApplicationForm creates the form for logging an application on the
// selected day.
func NewApplicationForm(fm *ApplicationFormModel, routines []models.Routine) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Routine").
				Options(routineOptions(routines, "None")...).
				Value(&fm.RoutineID),
			huh.NewInput().
				Title("Time (HH:MM)").
				Value(&fm.Time).
				Validate(validateClock),
			huh.NewText().
				Title("Notes").
				Value(&fm.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewRoutineLogForm creates the form for starting a routine log.
func NewRoutineLogForm(fm *RoutineLogFormModel, routines []models.Routine) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("e.g. AM or PM").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Time (HH:MM)").
				Value(&fm.Time).
				Validate(validateClock),
			huh.NewSelect[string]().
				Title("Copy products from").
				Options(routineOptions(routines, "Nothing")...).
				Value(&fm.FromRoutine),
			huh.NewText().
				Title("Notes").
				Value(&fm.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewRoutineForm creates the form for adding a routine. Names must be
// unique, ignoring case.
func NewRoutineForm(fm *RoutineFormModel, existing []models.Routine) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Routine Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return fmt.Errorf("routine name cannot be empty")
					}
					for _, r := range existing {
						if strings.EqualFold(r.Name, s) {
							return fmt.Errorf("routine %q already exists", r.Name)
						}
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// defaultRoutineLogName suggests AM before noon and PM after.
func defaultRoutineLogName(now time.Time) string {
	if now.Hour() < 12 {
		return "AM"
	}
	return "PM"
}
