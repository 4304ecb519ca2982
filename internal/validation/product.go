// Package validation checks product input and scans stored data for
// inconsistencies.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
)

var priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ProductInput is the raw form or flag input for a product.
type ProductInput struct {
	Name           string `json:"name" validate:"required,max=200"`
	Brand          string `json:"brand" validate:"max=200"`
	Category       string `json:"category" validate:"required,category"`
	Price          string `json:"price" validate:"omitempty,price"`
	Link           string `json:"link" validate:"omitempty,url"`
	ExpirationDate string `json:"expiration" validate:"omitempty,datetime=2006-01-02"`
	Ingredients    string `json:"ingredients"`
	Rating         *int   `json:"rating" validate:"omitempty,min=0,max=5"`
	NumberUsed     *int   `json:"used" validate:"omitempty,min=0"`
	NumberInStash  *int   `json:"in_stash" validate:"omitempty,min=0"`
	WillRepurchase *bool  `json:"repurchase"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("price", func(fl validator.FieldLevel) bool {
			return priceRe.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseCategory(fl.Field().String())
			return ok
		})
	})
	return validate
}

// FieldErrors maps json field names to a readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range sortedKeys(fe) {
		parts = append(parts, fe[f])
	}
	return strings.Join(parts, "; ")
}

// Validate checks in and returns FieldErrors on failure.
func (in ProductInput) Validate() error {
	err := get().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := FieldErrors{}
	for _, e := range verrs {
		fe[e.Field()] = message(e)
	}
	return fe
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date like %s", e.Field(), constants.DateFormat)
	case "price":
		return fmt.Sprintf("%s must be an amount like 12.50", e.Field())
	case "category":
		names := make([]string, len(models.Categories))
		for i, c := range models.Categories {
			names[i] = string(c)
		}
		return fmt.Sprintf("%s must be one of %s", e.Field(), strings.Join(names, ", "))
	}
	return fmt.Sprintf("%s is invalid", e.Field())
}

// ParsePrice converts a decimal amount such as "12.5" to cents.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !priceRe.MatchString(s) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	whole, frac, _ := strings.Cut(s, ".")
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	return w*100 + f, nil
}

// FormatPrice renders cents as a decimal amount.
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// Apply validates in and writes it onto p, keeping p's id and timestamps.
func (in ProductInput) Apply(p models.Product) (models.Product, error) {
	if err := in.Validate(); err != nil {
		return models.Product{}, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Brand = strings.TrimSpace(in.Brand)
	p.Category, _ = models.ParseCategory(in.Category)

	p.PriceCents = nil
	if in.Price != "" {
		cents, err := ParsePrice(in.Price)
		if err != nil {
			return models.Product{}, err
		}
		p.PriceCents = &cents
	}

	p.Link = optional(in.Link)
	p.Ingredients = optional(in.Ingredients)

	p.ExpirationDate = nil
	if in.ExpirationDate != "" {
		d, err := time.Parse(constants.DateFormat, in.ExpirationDate)
		if err != nil {
			return models.Product{}, err
		}
		p.ExpirationDate = &d
	}

	p.Rating = in.Rating
	p.NumberUsed = in.NumberUsed
	p.NumberInStash = in.NumberInStash
	p.WillRepurchase = in.WillRepurchase
	return p, nil
}

// InputFrom is the inverse of Apply, used to prefill edit forms.
func InputFrom(p models.Product) ProductInput {
	in := ProductInput{
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       string(p.Category),
		Rating:         p.Rating,
		NumberUsed:     p.NumberUsed,
		NumberInStash:  p.NumberInStash,
		WillRepurchase: p.WillRepurchase,
	}
	if p.PriceCents != nil {
		in.Price = FormatPrice(*p.PriceCents)
	}
	if p.Link != nil {
		in.Link = *p.Link
	}
	if p.Ingredients != nil {
		in.Ingredients = *p.Ingredients
	}
	if p.ExpirationDate != nil {
		in.ExpirationDate = p.ExpirationDate.Format(constants.DateFormat)
	}
	return in
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
