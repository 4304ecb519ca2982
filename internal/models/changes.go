package models

import "time"

type ProductField string

const (
	FieldName           ProductField = "name"
	FieldBrand          ProductField = "brand"
	FieldPrice          ProductField = "price"
	FieldLink           ProductField = "link"
	FieldExpirationDate ProductField = "expiration_date"
	FieldCategory       ProductField = "category"
	FieldIngredients    ProductField = "ingredients"
	FieldRating         ProductField = "rating"
	FieldNumberUsed     ProductField = "number_used"
	FieldNumberInStash  ProductField = "number_in_stash"
	FieldWillRepurchase ProductField = "will_repurchase"
)

// ProductFieldChange is a single-field edit of a product. The set of
// implementations is closed to this package.
type ProductFieldChange interface {
	Field() ProductField
	applyTo(p *Product)
}

type NameChanged struct{ Name string }
type BrandChanged struct{ Brand string }
type PriceChanged struct{ Cents *int64 }
type LinkChanged struct{ Link *string }
type ExpirationChanged struct{ Date *time.Time }
type CategoryChanged struct{ Category Category }
type IngredientsChanged struct{ Ingredients *string }
type RatingChanged struct{ Rating *int }
type NumberUsedChanged struct{ Count *int }
type NumberInStashChanged struct{ Count *int }
type WillRepurchaseChanged struct{ Value *bool }

func (NameChanged) Field() ProductField           { return FieldName }
func (BrandChanged) Field() ProductField          { return FieldBrand }
func (PriceChanged) Field() ProductField          { return FieldPrice }
func (LinkChanged) Field() ProductField           { return FieldLink }
func (ExpirationChanged) Field() ProductField     { return FieldExpirationDate }
func (CategoryChanged) Field() ProductField       { return FieldCategory }
func (IngredientsChanged) Field() ProductField    { return FieldIngredients }
func (RatingChanged) Field() ProductField         { return FieldRating }
func (NumberUsedChanged) Field() ProductField     { return FieldNumberUsed }
func (NumberInStashChanged) Field() ProductField  { return FieldNumberInStash }
func (WillRepurchaseChanged) Field() ProductField { return FieldWillRepurchase }

func (c NameChanged) applyTo(p *Product)           { p.Name = c.Name }
func (c BrandChanged) applyTo(p *Product)          { p.Brand = c.Brand }
func (c PriceChanged) applyTo(p *Product)          { p.PriceCents = c.Cents }
func (c LinkChanged) applyTo(p *Product)           { p.Link = c.Link }
func (c ExpirationChanged) applyTo(p *Product)     { p.ExpirationDate = c.Date }
func (c CategoryChanged) applyTo(p *Product)       { p.Category = c.Category }
func (c IngredientsChanged) applyTo(p *Product)    { p.Ingredients = c.Ingredients }
func (c RatingChanged) applyTo(p *Product)         { p.Rating = c.Rating }
func (c NumberUsedChanged) applyTo(p *Product)     { p.NumberUsed = c.Count }
func (c NumberInStashChanged) applyTo(p *Product)  { p.NumberInStash = c.Count }
func (c WillRepurchaseChanged) applyTo(p *Product) { p.WillRepurchase = c.Value }

// Apply returns a copy of p with the change applied.
func (p Product) Apply(c ProductFieldChange) Product {
	c.applyTo(&p)
	return p
}

// DiffProduct returns one change per field that differs between old and
// updated, in field declaration order.
func DiffProduct(old, updated Product) []ProductFieldChange {
	var changes []ProductFieldChange
	if old.Name != updated.Name {
		changes = append(changes, NameChanged{Name: updated.Name})
	}
	if old.Brand != updated.Brand {
		changes = append(changes, BrandChanged{Brand: updated.Brand})
	}
	if !equalPtr(old.PriceCents, updated.PriceCents) {
		changes = append(changes, PriceChanged{Cents: updated.PriceCents})
	}
	if !equalPtr(old.Link, updated.Link) {
		changes = append(changes, LinkChanged{Link: updated.Link})
	}
	if !equalTimePtr(old.ExpirationDate, updated.ExpirationDate) {
		changes = append(changes, ExpirationChanged{Date: updated.ExpirationDate})
	}
	if old.Category != updated.Category {
		changes = append(changes, CategoryChanged{Category: updated.Category})
	}
	if !equalPtr(old.Ingredients, updated.Ingredients) {
		changes = append(changes, IngredientsChanged{Ingredients: updated.Ingredients})
	}
	if !equalPtr(old.Rating, updated.Rating) {
		changes = append(changes, RatingChanged{Rating: updated.Rating})
	}
	if !equalPtr(old.NumberUsed, updated.NumberUsed) {
		changes = append(changes, NumberUsedChanged{Count: updated.NumberUsed})
	}
	if !equalPtr(old.NumberInStash, updated.NumberInStash) {
		changes = append(changes, NumberInStashChanged{Count: updated.NumberInStash})
	}
	if !equalPtr(old.WillRepurchase, updated.WillRepurchase) {
		changes = append(changes, WillRepurchaseChanged{Value: updated.WillRepurchase})
	}
	return changes
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
