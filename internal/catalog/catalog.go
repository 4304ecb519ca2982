// Package catalog groups products into display buckets by category.
package catalog

import (
	"strings"

	"github.com/julianstephens/skinlog/internal/models"
)

type Bucket struct {
	Title    string
	Category models.Category
}

// Buckets is the display order.
var Buckets = []Bucket{
	{Title: "Cleansers", Category: models.CategoryCleanser},
	{Title: "Actives", Category: models.CategoryActive},
	{Title: "Hydrators", Category: models.CategoryHydrator},
	{Title: "Occlusives", Category: models.CategoryOcclusive},
	{Title: "Sunscreens", Category: models.CategorySunscreen},
	{Title: "Treatments", Category: models.CategoryTreatment},
}

// Section is a non-empty bucket ready for display.
type Section struct {
	Bucket
	Products []models.Product
}

// Filter keeps products whose name or brand contains term, ignoring case.
// A blank term keeps everything.
func Filter(products []models.Product, term string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Brand), term) {
			out = append(out, p)
		}
	}
	return out
}

// Partition filters products by term and groups them by category,
// preserving input order within each group.
func Partition(products []models.Product, term string) map[models.Category][]models.Product {
	groups := make(map[models.Category][]models.Product, len(Buckets))
	for _, p := range Filter(products, term) {
		groups[p.Category] = append(groups[p.Category], p)
	}
	return groups
}

// Sections returns the non-empty buckets in display order.
func Sections(products []models.Product, term string) []Section {
	groups := Partition(products, term)
	var sections []Section
	for _, b := range Buckets {
		if ps := groups[b.Category]; len(ps) > 0 {
			sections = append(sections, Section{Bucket: b, Products: ps})
		}
	}
	return sections
}

// TitleFor returns the bucket title of a category.
func TitleFor(c models.Category) string {
	for _, b := range Buckets {
		if b.Category == c {
			return b.Title
		}
	}
	return string(c)
}
