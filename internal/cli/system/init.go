package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/config"
	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/export"
	"github.com/julianstephens/skinlog/internal/keyring"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/storage/postgres"
	"github.com/julianstephens/skinlog/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing SQLite database before initializing."`
	Source string `help:"Database path, PostgreSQL connection string, or 'keyring' to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized skinlog storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		sum, err := c.copyFrom(ctx)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Printf("Copied %s\n", sum)
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if ctx.Config != nil && ctx.Config.IsPostgres() {
		return errors.New("--force only applies to SQLite databases")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSrc, errSrc := filepath.Abs(c.Source)
		if errDB == nil && errSrc == nil && absDB == absSrc {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	fmt.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

// sourceStore opens the store named by source. "keyring" selects the
// connection string kept in the OS keyring.
func sourceStore(source string, creds keyring.Credentials) (storage.Provider, error) {
	var pg *postgres.Store
	switch {
	case source == constants.KeyringDatabase:
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			return nil, fmt.Errorf("read connection string from keyring: %w", err)
		}
		pg = postgres.NewFromKeyring(connStr)
	case config.IsPostgres(source):
		pg = postgres.New(source)
	default:
		return sqlite.NewStore(config.ExpandHome(source)), nil
	}
	if err := pg.Authenticate(creds.Username, creds.Password); err != nil {
		return nil, err
	}
	return pg, nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context) (export.Summary, error) {
	source, err := sourceStore(c.Source, ctx.Credentials)
	if err != nil {
		return export.Summary{}, err
	}
	if err := source.Load(); err != nil {
		return export.Summary{}, fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	doc, err := export.Export(source)
	if err != nil {
		return export.Summary{}, err
	}
	return export.Import(ctx.Store, doc, ctx.Resolver.Location())
}
