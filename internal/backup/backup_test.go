package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage/sqlite"
)

func setupDB(t *testing.T, names ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skinlog.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()
	for _, name := range names {
		if err := store.AddProduct(models.Product{ID: name, Name: name, Category: models.CategoryCleanser}); err != nil {
			t.Fatalf("AddProduct failed: %v", err)
		}
	}
	return path
}

func productCount(t *testing.T, path string) int {
	t.Helper()
	store := sqlite.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load(%s) failed: %v", path, err)
	}
	defer store.Close()
	products, err := store.GetAllProducts()
	if err != nil {
		t.Fatalf("GetAllProducts failed: %v", err)
	}
	return len(products)
}

func TestCreate(t *testing.T) {
	dbPath := setupDB(t, "a", "b")
	mgr := NewManager(dbPath)

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written outside backup dir: %s", path)
	}
	if got := productCount(t, path); got != 2 {
		t.Errorf("expected 2 products in backup, got %d", got)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Fatal("expected error backing up a missing database")
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupDB(t)
	mgr := NewManager(dbPath)
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return clock }

	for i := 0; i < constants.MaxBackups+5; i++ {
		clock = clock.Add(time.Minute)
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	if !backups[0].Timestamp.Equal(clock) {
		t.Errorf("newest backup = %v, want %v", backups[0].Timestamp, clock)
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i].Timestamp.Before(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
}

func TestSameSecondBackupsAreDistinct(t *testing.T) {
	dbPath := setupDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Errorf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 4 || backups[0].Seq != 3 || backups[3].Seq != 0 {
		t.Errorf("unexpected ordering: %+v", backups)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		seq  int
		ok   bool
	}{
		{"skinlog-20240101-090000.db", 0, true},
		{"skinlog-20240101-090000-2.db", 2, true},
		{"skinlog-20240101-090000-x.db", 0, false},
		{"skinlog-20240101-0900.db", 0, false},
		{"other-20240101-090000.db", 0, false},
		{"skinlog-20240101-090000.db-wal", 0, false},
	}
	for _, tt := range tests {
		_, seq, ok := parseName(tt.name)
		if ok != tt.ok || seq != tt.seq {
			t.Errorf("parseName(%q) = %d, %v; want %d, %v", tt.name, seq, ok, tt.seq, tt.ok)
		}
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupDB(t, "a", "b")
	mgr := NewManager(dbPath)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.AddProduct(models.Product{ID: "c", Name: "c", Category: models.CategoryActive}); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	store.Close()

	previous, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := productCount(t, dbPath); got != 2 {
		t.Errorf("expected 2 products after restore, got %d", got)
	}
	if previous == "" {
		t.Fatal("expected a pre-restore backup")
	}
	if got := productCount(t, previous); got != 3 {
		t.Errorf("expected pre-restore backup to hold 3 products, got %d", got)
	}
}

func TestRestoreRejectsCorruptBackup(t *testing.T) {
	dbPath := setupDB(t, "a")
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(mgr.Dir(), "skinlog-20240101-090000.db")
	if err := os.WriteFile(bad, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.Restore(bad); err == nil {
		t.Fatal("expected corrupt backup to be rejected")
	}
	if got := productCount(t, dbPath); got != 1 {
		t.Errorf("database changed by failed restore: %d products", got)
	}
}

func TestRestoreMissingBackup(t *testing.T) {
	mgr := NewManager(setupDB(t))
	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Fatal("expected error for missing backup")
	}
}
