package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/migration"
)

// migrator is implemented by the SQL backends.
type migrator interface {
	Migrator() (*migration.Runner, error)
}

func runnerFor(ctx *cli.Context) (*migration.Runner, error) {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil, errors.New("store does not support migrations")
	}
	return m.Migrator()
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
