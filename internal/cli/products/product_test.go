package products

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/config"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage/sqlite"
	"github.com/julianstephens/skinlog/internal/validation"
)

func setupTestContext(t *testing.T) *cli.Context {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Timezone = "UTC"
	cfg.Backup.Enabled = false

	store := sqlite.NewStore(filepath.Join(dir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	ctx, err := cli.New(store, &cfg)
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	t.Cleanup(ctx.Close)
	return ctx
}

func ptr[T any](v T) *T { return &v }

func TestProductAddCmd(t *testing.T) {
	ctx := setupTestContext(t)

	cmd := &ProductAddCmd{
		Name:     "Gel Cleanser",
		Category: "Cleanser",
		Brand:    "Acme",
		Price:    "12.50",
		Rating:   ptr(4),
		Stash:    true,
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("product add failed: %v", err)
	}

	p, err := ctx.FindProduct("Gel Cleanser")
	if err != nil {
		t.Fatalf("product not stored: %v", err)
	}
	if p.Category != models.CategoryCleanser || p.PriceCents == nil || *p.PriceCents != 1250 {
		t.Errorf("unexpected product: %+v", p)
	}
	stash, err := ctx.Store.GetCollection(models.CollectionStash)
	if err != nil {
		t.Fatalf("failed to read stash: %v", err)
	}
	if len(stash.Products) != 1 || stash.Products[0].ID != p.ID {
		t.Errorf("stash = %+v, want the new product", stash.Products)
	}
	wish, _ := ctx.Store.GetCollection(models.CollectionWishList)
	if len(wish.Products) != 0 {
		t.Errorf("wish list should be empty, got %d", len(wish.Products))
	}
}

func TestProductAddCmd_Invalid(t *testing.T) {
	ctx := setupTestContext(t)

	tests := []struct {
		name string
		cmd  ProductAddCmd
	}{
		{"unknown category", ProductAddCmd{Name: "X", Category: "toner"}},
		{"bad price", ProductAddCmd{Name: "X", Category: "cleanser", Price: "cheap"}},
		{"bad expiration", ProductAddCmd{Name: "X", Category: "cleanser", Expires: "soon"}},
		{"rating out of range", ProductAddCmd{Name: "X", Category: "cleanser", Rating: ptr(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(ctx)
			var fe validation.FieldErrors
			if !errors.As(err, &fe) {
				t.Errorf("expected field errors, got %v", err)
			}
		})
	}

	products, _ := ctx.Store.GetAllProducts()
	if len(products) != 0 {
		t.Errorf("invalid input stored %d product(s)", len(products))
	}
}

func TestProductEditCmd(t *testing.T) {
	ctx := setupTestContext(t)
	if err := (&ProductAddCmd{Name: "Serum", Category: "active", Price: "30"}).Run(ctx); err != nil {
		t.Fatalf("product add failed: %v", err)
	}

	edit := &ProductEditCmd{Product: "serum", Name: ptr("Retinal Serum"), Price: ptr(""), InStash: ptr(2)}
	if err := edit.Run(ctx); err != nil {
		t.Fatalf("product edit failed: %v", err)
	}

	p, err := ctx.FindProduct("Retinal Serum")
	if err != nil {
		t.Fatalf("renamed product not found: %v", err)
	}
	if p.PriceCents != nil {
		t.Errorf("price should be cleared, got %d", *p.PriceCents)
	}
	if p.NumberInStash == nil || *p.NumberInStash != 2 {
		t.Errorf("number in stash = %v, want 2", p.NumberInStash)
	}
	if p.Category != models.CategoryActive {
		t.Errorf("category changed to %q", p.Category)
	}

	// No changes is not an error.
	if err := (&ProductEditCmd{Product: p.ID}).Run(ctx); err != nil {
		t.Errorf("empty edit failed: %v", err)
	}
}

func TestProductDeleteAndRestore(t *testing.T) {
	ctx := setupTestContext(t)
	if err := (&ProductAddCmd{Name: "Balm", Category: "occlusive", Wish: true}).Run(ctx); err != nil {
		t.Fatalf("product add failed: %v", err)
	}
	p, _ := ctx.FindProduct("Balm")

	if err := (&ProductDeleteCmd{Product: "Balm"}).Run(ctx); err != nil {
		t.Fatalf("product delete failed: %v", err)
	}
	if _, err := ctx.FindProduct("Balm"); err == nil {
		t.Error("deleted product should not be found by name")
	}
	wish, _ := ctx.Store.GetCollection(models.CollectionWishList)
	if len(wish.Products) != 0 {
		t.Errorf("deleting should purge the wish list, got %d", len(wish.Products))
	}
	if err := (&ProductListCmd{Deleted: true}).Run(ctx); err != nil {
		t.Errorf("product list --deleted failed: %v", err)
	}

	if err := (&ProductRestoreCmd{ID: p.ID}).Run(ctx); err != nil {
		t.Fatalf("product restore failed: %v", err)
	}
	if _, err := ctx.FindProduct("Balm"); err != nil {
		t.Errorf("restored product not found: %v", err)
	}
}

func TestProductShowAndList(t *testing.T) {
	ctx := setupTestContext(t)
	if err := (&ProductAddCmd{Name: "SPF 50", Category: "sunscreen", Expires: "2020-01-01", Link: "https://example.com/spf"}).Run(ctx); err != nil {
		t.Fatalf("product add failed: %v", err)
	}

	if err := (&ProductShowCmd{Product: "spf 50"}).Run(ctx); err != nil {
		t.Errorf("product show failed: %v", err)
	}
	if err := (&ProductListCmd{Search: "spf"}).Run(ctx); err != nil {
		t.Errorf("product list failed: %v", err)
	}
	if err := (&ProductShowCmd{Product: "nope"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown product")
	}
}
