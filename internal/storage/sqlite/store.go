package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/migration"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/storage/sqlstore"
	"github.com/julianstephens/skinlog/internal/watch"
	"github.com/julianstephens/skinlog/migrations"
)

const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type Store struct {
	*sqlstore.Store
	path     string
	debounce time.Duration
}

var (
	_ storage.Provider     = (*Store)(nil)
	_ storage.ChangeSource = (*Store)(nil)
)

func NewStore(path string) *Store {
	return &Store{
		Store:    sqlstore.New(migration.SQLite),
		path:     path,
		debounce: watch.DefaultDebounce,
	}
}

// SetDebounce sets how long Watch coalesces file events.
func (s *Store) SetDebounce(d time.Duration) {
	if d > 0 {
		s.debounce = d
	}
}

func (s *Store) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}

	if _, err := runner(db).ApplyMigrations(func(msg string) {
		logger.Info(msg, "backend", "sqlite")
	}); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.Bind(db)
	return nil
}

func (s *Store) Load() error {
	if s.GetDB() != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'skinlog init' first")
	}

	db, err := s.open()
	if err != nil {
		return err
	}

	// Validate schema version using embedded migrations
	if err := runner(db).ValidateVersion(); err != nil {
		db.Close()
		return err
	}

	s.Bind(db)
	return nil
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows one writer; a single connection serializes transactions
	// instead of failing them with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return db, nil
}

func runner(db *sql.DB) *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return migration.NewRunner(db, subFS, migration.SQLite)
}

// Watch reports writes to the database file, including those made by
// other processes. Every change reports all scopes.
func (s *Store) Watch(ctx context.Context, fn storage.ChangeFunc) error {
	w, err := watch.New(s.debounce, s.path, s.path+"-wal")
	if err != nil {
		return err
	}
	return w.Run(ctx, func() {
		fn(models.AllScopes...)
	})
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// Migrator returns a migration runner bound to the loaded database.
func (s *Store) Migrator() (*migration.Runner, error) {
	db := s.GetDB()
	if db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	return runner(db), nil
}
