package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/config"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Timezone = "UTC"
	cfg.Backup.Enabled = false

	ctx, err := cli.New(sqlite.NewStore(cfg.Database), &cfg)
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	ctx.ConfigPath = filepath.Join(dir, "config.yaml")
	t.Cleanup(ctx.Close)
	return ctx, cfg.Database
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath := setupTestContext(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestContext(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := ctx.Store.AddProduct(models.Product{ID: "p1", Name: "Old", Category: models.CategoryCleanser}); err != nil {
		t.Fatalf("failed to add product: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	products, err := ctx.Store.GetAllProducts()
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected an empty database after --force, got %d products", len(products))
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath := setupTestContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx); err == nil {
		t.Error("expected an error when source and destination are the same")
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "source.db")
	src := sqlite.NewStore(srcPath)
	if err := src.Init(); err != nil {
		t.Fatalf("failed to initialize source: %v", err)
	}
	now := time.Now()
	if err := src.AddProduct(models.Product{ID: "p1", Name: "Gel Cleanser", Category: models.CategoryCleanser, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("failed to add product: %v", err)
	}
	if err := src.AddToCollection(models.CollectionStash, "p1"); err != nil {
		t.Fatalf("failed to stash product: %v", err)
	}
	src.Close()

	ctx, _ := setupTestContext(t)
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init --source failed: %v", err)
	}

	stash, err := ctx.Store.GetCollection(models.CollectionStash)
	if err != nil {
		t.Fatalf("failed to read stash: %v", err)
	}
	if len(stash.Products) != 1 || stash.Products[0].Name != "Gel Cleanser" {
		t.Errorf("stash = %+v, want the copied product", stash.Products)
	}
}
