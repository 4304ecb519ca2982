package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryCleanser  Category = "cleanser"
	CategoryActive    Category = "active"
	CategoryHydrator  Category = "hydrator"
	CategoryOcclusive Category = "occlusive"
	CategorySunscreen Category = "sunscreen"
	CategoryTreatment Category = "treatment"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryCleanser,
	CategoryActive,
	CategoryHydrator,
	CategoryOcclusive,
	CategorySunscreen,
	CategoryTreatment,
}

// ParseCategory accepts a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type Product struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Brand          string     `json:"brand" yaml:"brand"`
	PriceCents     *int64     `json:"price_cents,omitempty" yaml:"priceCents,omitempty"`
	Link           *string    `json:"link,omitempty" yaml:"link,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty" yaml:"expirationDate,omitempty"`
	Category       Category   `json:"category" yaml:"category"`
	Ingredients    *string    `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Rating         *int       `json:"rating,omitempty" yaml:"rating,omitempty"`
	NumberUsed     *int       `json:"number_used,omitempty" yaml:"numberUsed,omitempty"`
	NumberInStash  *int       `json:"number_in_stash,omitempty" yaml:"numberInStash,omitempty"`
	WillRepurchase *bool      `json:"will_repurchase,omitempty" yaml:"willRepurchase,omitempty"`
	CreatedAt      time.Time  `json:"created_at" yaml:"createdAt"`
	UpdatedAt      time.Time  `json:"updated_at" yaml:"updatedAt"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" yaml:"deletedAt,omitempty"`
}

// Expired reports whether the product's expiration date is before now.
func (p Product) Expired(now time.Time) bool {
	return p.ExpirationDate != nil && p.ExpirationDate.Before(now)
}

// Equal reports whether p and o agree on every user-editable field.
func (p Product) Equal(o Product) bool {
	return p.ID == o.ID && len(DiffProduct(p, o)) == 0
}
