package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateProduct  ConflictType = "duplicate_product"
	ConflictUnknownCategory   ConflictType = "unknown_category"
	ConflictInvalidRating     ConflictType = "invalid_rating"
	ConflictExpiredInStash    ConflictType = "expired_in_stash"
	ConflictStashAndWishList  ConflictType = "stash_and_wishlist"
	ConflictEmptyRoutine      ConflictType = "empty_routine"
	ConflictDuplicateRoutine  ConflictType = "duplicate_routine_name"
	ConflictNegativeInventory ConflictType = "negative_inventory"
)

// Conflict represents a detected problem in stored data
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // names involved
	ProductIDs  []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator scans a catalog snapshot for conflicts
type Validator struct {
	now func() time.Time
}

func New() *Validator {
	return &Validator{now: time.Now}
}

// Catalog is the snapshot checked by ValidateCatalog.
type Catalog struct {
	Products []models.Product
	Stash    []models.Product
	WishList []models.Product
	Routines []models.Routine
}

func (v *Validator) ValidateCatalog(c Catalog) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	result.Conflicts = append(result.Conflicts, v.ValidateProducts(c.Products).Conflicts...)

	now := v.now()
	wish := make(map[string]bool, len(c.WishList))
	for _, p := range c.WishList {
		wish[p.ID] = true
	}
	for _, p := range c.Stash {
		if p.Expired(now) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictExpiredInStash,
				Description: fmt.Sprintf("%q in stash expired on %s", p.Name, p.ExpirationDate.Format(constants.DateFormat)),
				Items:       []string{p.Name},
				ProductIDs:  []string{p.ID},
			})
		}
		if wish[p.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStashAndWishList,
				Description: fmt.Sprintf("%q is in both the stash and the wish list", p.Name),
				Items:       []string{p.Name},
				ProductIDs:  []string{p.ID},
			})
		}
	}

	names := map[string][]string{}
	for _, r := range c.Routines {
		key := strings.ToLower(strings.TrimSpace(r.Name))
		names[key] = append(names[key], r.Name)
		if len(r.Products) == 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictEmptyRoutine,
				Description: fmt.Sprintf("routine %q has no products", r.Name),
				Items:       []string{r.Name},
			})
		}
	}
	for _, key := range sortedKeys(names) {
		if group := names[key]; len(group) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateRoutine,
				Description: fmt.Sprintf("%d routines are named %q", len(group), group[0]),
				Items:       group,
			})
		}
	}
	return result
}

// ValidateProducts checks non-deleted products for duplicates and
// out-of-range values.
func (v *Validator) ValidateProducts(products []models.Product) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byName := map[string][]models.Product{}
	for _, p := range products {
		if p.DeletedAt != nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p.Brand)) + "\x00" + strings.ToLower(strings.TrimSpace(p.Name))
		byName[key] = append(byName[key], p)

		if _, ok := models.ParseCategory(string(p.Category)); !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownCategory,
				Description: fmt.Sprintf("%q has unknown category %q", p.Name, p.Category),
				Items:       []string{p.Name},
				ProductIDs:  []string{p.ID},
			})
		}
		if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidRating,
				Description: fmt.Sprintf("%q has rating %d, expected 0-5", p.Name, *p.Rating),
				Items:       []string{p.Name},
				ProductIDs:  []string{p.ID},
			})
		}
		if (p.NumberUsed != nil && *p.NumberUsed < 0) || (p.NumberInStash != nil && *p.NumberInStash < 0) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictNegativeInventory,
				Description: fmt.Sprintf("%q has a negative count", p.Name),
				Items:       []string{p.Name},
				ProductIDs:  []string{p.ID},
			})
		}
	}

	for _, key := range sortedKeys(byName) {
		group := byName[key]
		if len(group) < 2 {
			continue
		}
		c := Conflict{Type: ConflictDuplicateProduct}
		for _, p := range group {
			c.Items = append(c.Items, p.Name)
			c.ProductIDs = append(c.ProductIDs, p.ID)
		}
		label := group[0].Name
		if group[0].Brand != "" {
			label = group[0].Brand + " " + label
		}
		c.Description = fmt.Sprintf("duplicate product: %q appears %d times", label, len(group))
		result.Conflicts = append(result.Conflicts, c)
	}
	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
