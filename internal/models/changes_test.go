package models

import (
	"testing"
	"time"
)

func TestDiffProduct(t *testing.T) {
	price := int64(1299)
	rating := 4
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	base := Product{ID: "p1", Name: "Cleanser A", Brand: "Acme", Category: CategoryCleanser}

	tests := []struct {
		name   string
		update func(p Product) Product
		want   []ProductField
	}{
		{
			name:   "no changes",
			update: func(p Product) Product { return p },
			want:   nil,
		},
		{
			name: "name and brand",
			update: func(p Product) Product {
				p.Name = "Cleanser B"
				p.Brand = "Other"
				return p
			},
			want: []ProductField{FieldName, FieldBrand},
		},
		{
			name: "optional fields set",
			update: func(p Product) Product {
				p.PriceCents = &price
				p.Rating = &rating
				p.ExpirationDate = &exp
				return p
			},
			want: []ProductField{FieldPrice, FieldExpirationDate, FieldRating},
		},
		{
			name: "category",
			update: func(p Product) Product {
				p.Category = CategorySunscreen
				return p
			},
			want: []ProductField{FieldCategory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := DiffProduct(base, tt.update(base))
			if len(changes) != len(tt.want) {
				t.Fatalf("expected %d changes, got %d", len(tt.want), len(changes))
			}
			for i, c := range changes {
				if c.Field() != tt.want[i] {
					t.Errorf("change %d: expected field %s, got %s", i, tt.want[i], c.Field())
				}
			}
		})
	}
}

func TestApplyRoundTripsDiff(t *testing.T) {
	link := "https://example.com/serum"
	repurchase := true
	old := Product{ID: "p1", Name: "Serum", Category: CategoryActive}
	updated := old
	updated.Name = "Serum 2"
	updated.Link = &link
	updated.WillRepurchase = &repurchase

	got := old
	for _, c := range DiffProduct(old, updated) {
		got = got.Apply(c)
	}

	if len(DiffProduct(got, updated)) != 0 {
		t.Errorf("applying diff did not reproduce the updated product: %+v", got)
	}
	if old.Name != "Serum" {
		t.Errorf("Apply mutated the receiver")
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"cleanser", CategoryCleanser, true},
		{" Sunscreen ", CategorySunscreen, true},
		{"TREATMENT", CategoryTreatment, true},
		{"toner", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCategory(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
