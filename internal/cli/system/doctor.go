package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/skinlog/internal/backup"
	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/keyring"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warn reports a failure without failing the command.
	warn bool
	// needsDB skips the check when the database could not be opened.
	needsDB bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warn: true},
	{name: "Data validation", run: checkValidation, needsDB: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", run: checkKeyring, warn: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	failed := false
	reachable := true
	if err := ctx.Open(context.Background()); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		failed = true
		reachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !reachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			fmt.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			fmt.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed = true
		}
	}

	fmt.Println()
	if failed {
		fmt.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func versions(ctx *cli.Context) (current, latest int, err error) {
	runner, err := runnerFor(ctx)
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := versions(ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := versions(ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'skinlog migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Config != nil && ctx.Config.IsPostgres() {
		return errors.New("backups are not managed for PostgreSQL, use pg_dump")
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'skinlog backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	result, err := validateCatalog(ctx)
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%d issue(s) found:\n%s", len(result.Conflicts), result.FormatReport())
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Config != nil {
		if _, err := ctx.Config.Location(); err != nil {
			return fmt.Errorf("configured timezone %q is invalid: %w", ctx.Config.Timezone, err)
		}
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; use a credentials file instead")
	}
	return nil
}
