package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/migration"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/storage/sqlstore"
	"github.com/julianstephens/skinlog/migrations"
)

type Store struct {
	*sqlstore.Store
	connStr string
	// trusted marks a connection string read from the OS keyring, which may
	// carry its own password.
	trusted bool
}

var (
	_ storage.Provider     = (*Store)(nil)
	_ storage.ChangeSource = (*Store)(nil)
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	s := &Store{
		Store:   sqlstore.New(migration.Postgres),
		connStr: connStr,
	}
	s.ensureSearchPath()
	return s
}

// NewFromKeyring returns a store for a connection string held in the OS
// keyring. Such a string may embed a password.
func NewFromKeyring(connStr string) *Store {
	s := New(connStr)
	s.trusted = true
	return s
}

// WithCredentials injects a user and password into the connection string.
// Passwords are kept out of config files and supplied from the keyring.
func (s *Store) WithCredentials(user, password string) *Store {
	if user == "" && password == "" {
		return s
	}
	if isURL(s.connStr) {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return s
		}
		if user == "" && u.User != nil {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, password)
		s.connStr = u.String()
		return s
	}

	if user != "" {
		s.connStr = strings.TrimSpace(s.connStr) + " user=" + quoteDSN(user)
	}
	if password != "" {
		s.connStr = strings.TrimSpace(s.connStr) + " password=" + quoteDSN(password)
	}
	return s
}

// Authenticate rejects a configured connection string that already
// carries a password, then injects user and password. A keyring string with
// an embedded password is used as is.
func (s *Store) Authenticate(user, password string) error {
	if _, err := ValidateConnString(s.connStr); err != nil {
		if s.trusted && errors.Is(err, ErrEmbeddedCredentials) {
			return nil
		}
		return err
	}
	s.WithCredentials(user, password)
	return nil
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

func (s *Store) ensureSearchPath() {
	if isURL(s.connStr) {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
	} else if !hasParam(s.connStr, "search_path") {
		s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
	}
}

// hasParam reports whether a URL or DSN connection string sets key.
func hasParam(connStr, key string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for k := range u.Query() {
			if strings.EqualFold(k, key) {
				return true
			}
		}
	}
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], key) {
			return true
		}
	}
	return false
}

// ValidateConnString checks that connStr is a usable PostgreSQL URI or DSN
// and carries no password.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if isURL(connStr) {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := parsedURL.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}
		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return true, nil
	}

	if hasParam(connStr, "password") {
		return false, ErrEmbeddedCredentials
	}
	return true, nil
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool parameters to avoid connection exhaustion
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(s.connStr, "sslmode") {
			return nil, fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (s *Store) Init() error {
	db, err := s.open()
	if err != nil {
		return err
	}

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := runner(db).ApplyMigrations(func(msg string) {
		logger.Info(msg, "backend", "postgres")
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

	db, err := s.open()
	if err != nil {
		return err
	}
	if err := runner(db).ValidateVersion(); err != nil {
		db.Close()
		return err
	}

	s.Bind(db)
	return nil
}

func runner(db *sql.DB) *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		panic(err)
	}
	return migration.NewRunner(db, subFS, migration.Postgres)
}

// Watch listens on the change channel fed by the schema's triggers and
// blocks until ctx is done. Writes from this process are reported too.
func (s *Store) Watch(ctx context.Context, fn storage.ChangeFunc) error {
	log := logger.With("postgres")
	listener := pq.NewListener(s.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("listener event", "event", ev, "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(constants.ChangeChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", constants.ChangeChannel, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				// reconnected; notifications may have been missed
				fn(models.AllScopes...)
				continue
			}
			if scope, ok := ScopeForPayload(n.Extra); ok {
				fn(scope)
			}
		case <-time.After(90 * time.Second):
			go func() { _ = listener.Ping() }()
		}
	}
}

// ScopeForPayload maps a trigger payload to the scope it invalidates.
func ScopeForPayload(payload string) (models.Scope, bool) {
	if kind, ok := strings.CutPrefix(payload, "list:"); ok {
		switch kind {
		case string(models.CollectionStash):
			return models.ScopeStash, true
		case string(models.CollectionWishList):
			return models.ScopeWishList, true
		case "routine":
			return models.ScopeRoutines, true
		case "routine_log":
			return models.ScopeRoutineLogs, true
		}
		return "", false
	}
	for _, s := range models.AllScopes {
		if string(s) == payload {
			return s, true
		}
	}
	return "", false
}

func (s *Store) GetConfigPath() string {
	// Return a non-sensitive identifier instead of the full connection string
	return "postgresql"
}

// Migrator returns a migration runner bound to the loaded database.
func (s *Store) Migrator() (*migration.Runner, error) {
	db := s.GetDB()
	if db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	return runner(db), nil
}
