package models

import "time"

// Routine is a named regimen. Products are held by reference.
type Routine struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Products  []Product `json:"products" yaml:"-"`
	CreatedAt time.Time `json:"created_at" yaml:"createdAt"`
}

// ProductIDs returns the ids of the routine's products in order.
func (r Routine) ProductIDs() []string {
	return productIDs(r.Products)
}

// RoutineLog is a dated instance of a routine being performed, e.g. the
// "AM" routine on a given day.
type RoutineLog struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Notes    string    `json:"notes" yaml:"notes"`
	Time     time.Time `json:"time" yaml:"time"`
	Products []Product `json:"products" yaml:"-"`
}

func (l RoutineLog) ProductIDs() []string {
	return productIDs(l.Products)
}

func productIDs(products []Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
