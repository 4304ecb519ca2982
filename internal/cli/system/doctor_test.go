package system

import (
	"testing"
	"time"

	"github.com/julianstephens/skinlog/internal/models"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	// Backups and keyring only warn.
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_Uninitialized(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("expected doctor to fail when the database does not exist")
	}
}

func TestCheckValidationReportsConflicts(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := checkValidation(ctx); err != nil {
		t.Fatalf("empty catalog should validate: %v", err)
	}

	expired := time.Now().AddDate(0, -1, 0)
	p := models.Product{ID: "p1", Name: "Old Serum", Category: models.CategoryActive, ExpirationDate: &expired}
	if err := ctx.Store.AddProduct(p); err != nil {
		t.Fatalf("failed to add product: %v", err)
	}
	if err := ctx.Store.AddToCollection(models.CollectionStash, "p1"); err != nil {
		t.Fatalf("failed to stash product: %v", err)
	}

	if err := checkValidation(ctx); err == nil {
		t.Error("expected an expired stash product to be reported")
	}
	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Errorf("validate reports conflicts without failing: %v", err)
	}
}

func TestDebugCommands(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := ctx.Store.AddProduct(models.Product{ID: "p1", Name: "Gel Cleanser", Category: models.CategoryCleanser}); err != nil {
		t.Fatalf("failed to add product: %v", err)
	}

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Errorf("debug db-path failed: %v", err)
	}
	if err := (&DebugDumpProductCmd{Product: "gel cleanser"}).Run(ctx); err != nil {
		t.Errorf("debug dump-product failed: %v", err)
	}
	if err := (&DebugDumpProductCmd{Product: "missing"}).Run(ctx); err == nil {
		t.Error("expected an error for a missing product")
	}
	if err := (&DebugDumpDayCmd{Date: "2026-03-01"}).Run(ctx); err != nil {
		t.Errorf("debug dump-day failed: %v", err)
	}

	// Dumping a day must not create its log.
	logs, err := ctx.Store.GetAllLogs()
	if err != nil {
		t.Fatalf("failed to list logs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("dump-day created %d log(s)", len(logs))
	}
}
