package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/skinlog/internal/models"
)

func sample() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Foaming Cleanser", Brand: "CeraVe", Category: models.CategoryCleanser},
		{ID: "2", Name: "Retinal 0.1%", Brand: "Avène", Category: models.CategoryActive},
		{ID: "3", Name: "Hydrating Toner", Brand: "Pyunkang Yul", Category: models.CategoryHydrator},
		{ID: "4", Name: "Healing Ointment", Brand: "Aquaphor", Category: models.CategoryOcclusive},
		{ID: "5", Name: "UV Clear SPF 46", Brand: "EltaMD", Category: models.CategorySunscreen},
		{ID: "6", Name: "Azelaic Acid 10%", Brand: "Paula's Choice", Category: models.CategoryTreatment},
		{ID: "7", Name: "Oil Cleanser", Brand: "DHC", Category: models.CategoryCleanser},
	}
}

func TestPartitionIsTotalAndDisjoint(t *testing.T) {
	products := sample()
	groups := Partition(products, "")

	seen := map[string]int{}
	for cat, ps := range groups {
		for _, p := range ps {
			assert.Equal(t, cat, p.Category)
			seen[p.ID]++
		}
	}
	assert.Len(t, seen, len(products))
	for id, n := range seen {
		assert.Equal(t, 1, n, "product %s appears in %d buckets", id, n)
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	groups := Partition(sample(), "")
	cleansers := groups[models.CategoryCleanser]
	require.Len(t, cleansers, 2)
	assert.Equal(t, "1", cleansers[0].ID)
	assert.Equal(t, "7", cleansers[1].ID)
}

func TestBlankTermMatchesNoTerm(t *testing.T) {
	products := sample()
	assert.Equal(t, Partition(products, ""), Partition(products, "   "))
	assert.Equal(t, products, Filter(products, "\t"))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"cleanser", []string{"1", "7"}},
		{"CERAVE", []string{"1"}},
		{"acid", []string{"6"}},
		{"%", []string{"2", "6"}},
		{"nothing matches", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := Filter(sample(), tt.term)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSections(t *testing.T) {
	sections := Sections(sample(), "")
	require.Len(t, sections, len(Buckets))
	for i, s := range sections {
		assert.Equal(t, Buckets[i].Title, s.Title)
	}

	filtered := Sections(sample(), "spf")
	require.Len(t, filtered, 1)
	assert.Equal(t, "Sunscreens", filtered[0].Title)
}

func TestStashedCleanserOnlyInCleansers(t *testing.T) {
	stash := []models.Product{{ID: "c", Name: "Gel Cleanser", Category: models.CategoryCleanser}}
	sections := Sections(stash, "")
	require.Len(t, sections, 1)
	assert.Equal(t, models.CategoryCleanser, sections[0].Category)
	assert.Equal(t, "c", sections[0].Products[0].ID)
}

func TestTitleFor(t *testing.T) {
	assert.Equal(t, "Occlusives", TitleFor(models.CategoryOcclusive))
	assert.Equal(t, "toner", TitleFor(models.Category("toner")))
}
