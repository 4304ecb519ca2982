package logs

import (
	"fmt"
	"strings"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

type RoutineLogCmd struct {
	Start         RoutineLogStartCmd         `cmd:"" help:"Start (or reopen) a routine log for a day."`
	List          RoutineLogListCmd          `cmd:"" help:"List a day's routine logs." default:"1"`
	AddProduct    RoutineLogAddProductCmd    `cmd:"" name:"add-product" help:"Append a product to a routine log."`
	RemoveProduct RoutineLogRemoveProductCmd `cmd:"" name:"remove-product" help:"Remove the product at a position."`
	MoveProduct   RoutineLogMoveProductCmd   `cmd:"" name:"move-product" help:"Move a product within a routine log."`
	Notes         RoutineLogNotesCmd         `cmd:"" help:"Set a routine log's notes."`
	Delete        RoutineLogDeleteCmd        `cmd:"" help:"Delete a routine log."`
}

// findRoutineLog resolves ref as a routine log id, then as a name on the
// selected day.
func findRoutineLog(ctx *cli.Context, ref string, flags DayFlags) (models.RoutineLog, error) {
	if rl, err := ctx.Store.GetRoutineLog(ref); err == nil {
		return rl, nil
	}
	day, err := ctx.Day(flags.Date, flags.Offset)
	if err != nil {
		return models.RoutineLog{}, err
	}
	logs, err := ctx.Resolver.RoutineLogsForDay(day)
	if err != nil {
		return models.RoutineLog{}, err
	}
	for _, rl := range logs {
		if strings.EqualFold(rl.Name, strings.TrimSpace(ref)) {
			return rl, nil
		}
	}
	return models.RoutineLog{}, fmt.Errorf("routine log %q: %w", ref, storage.ErrNotFound)
}

type RoutineLogStartCmd struct {
	DayFlags
	Name string `arg:"" help:"Routine log name, e.g. AM."`
	Time string `short:"t" help:"Time of day (HH:MM, default: now)."`
	From string `short:"f" help:"Routine (id or name) whose products seed a new log."`
}

func (c *RoutineLogStartCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Date, c.Offset)
	if err != nil {
		return err
	}
	at, err := ctx.At(day, c.Time)
	if err != nil {
		return err
	}
	rl, err := ctx.Resolver.ResolveRoutineLog(at, c.Name)
	if err != nil {
		return err
	}

	if c.From != "" && len(rl.Products) == 0 {
		r, err := ctx.FindRoutine(c.From)
		if err != nil {
			return err
		}
		for _, p := range r.Products {
			if err := ctx.Store.AddRoutineLogProduct(rl.ID, p.ID); err != nil {
				return err
			}
		}
		fmt.Printf("Copied %d product(s) from %s\n", len(r.Products), r.Name)
	}
	fmt.Printf("%s routine log at %s (%s)\n", rl.Name, rl.Time.In(ctx.Resolver.Location()).Format(constants.TimeFormat), rl.ID)
	return nil
}

type RoutineLogListCmd struct {
	DayFlags
}

func (c *RoutineLogListCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Date, c.Offset)
	if err != nil {
		return err
	}
	logs, err := ctx.Resolver.RoutineLogsForDay(day)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Println("No routine logs for this day.")
		return nil
	}
	for _, rl := range logs {
		fmt.Printf("%s  %s  %d product(s)  %s\n",
			rl.Time.In(ctx.Resolver.Location()).Format(constants.TimeFormat), rl.Name, len(rl.Products), rl.ID)
	}
	return nil
}

type RoutineLogAddProductCmd struct {
	DayFlags
	RoutineLog string `arg:"" help:"Routine log id or name."`
	Product    string `arg:"" help:"Product id or name."`
}

func (c *RoutineLogAddProductCmd) Run(ctx *cli.Context) error {
	rl, err := findRoutineLog(ctx, c.RoutineLog, c.DayFlags)
	if err != nil {
		return err
	}
	p, err := ctx.FindProduct(c.Product)
	if err != nil {
		return err
	}
	if err := ctx.Store.AddRoutineLogProduct(rl.ID, p.ID); err != nil {
		return err
	}
	fmt.Printf("Added %s to %s\n", p.Name, rl.Name)
	return nil
}

type RoutineLogRemoveProductCmd struct {
	DayFlags
	RoutineLog string `arg:"" help:"Routine log id or name."`
	Position   int    `arg:"" help:"Position (1-based)."`
}

func (c *RoutineLogRemoveProductCmd) Run(ctx *cli.Context) error {
	rl, err := findRoutineLog(ctx, c.RoutineLog, c.DayFlags)
	if err != nil {
		return err
	}
	if err := ctx.Store.RemoveRoutineLogProduct(rl.ID, cli.Position(c.Position)); err != nil {
		return err
	}
	fmt.Printf("Removed item %d from %s\n", c.Position, rl.Name)
	return nil
}

type RoutineLogMoveProductCmd struct {
	DayFlags
	RoutineLog string `arg:"" help:"Routine log id or name."`
	From       int    `arg:"" help:"Current position (1-based)."`
	To         int    `arg:"" help:"New position (1-based)."`
}

func (c *RoutineLogMoveProductCmd) Run(ctx *cli.Context) error {
	rl, err := findRoutineLog(ctx, c.RoutineLog, c.DayFlags)
	if err != nil {
		return err
	}
	if err := ctx.Store.MoveRoutineLogProduct(rl.ID, cli.Position(c.From), cli.Position(c.To)); err != nil {
		return err
	}
	fmt.Printf("Moved item %d to position %d in %s\n", c.From, c.To, rl.Name)
	return nil
}

type RoutineLogNotesCmd struct {
	DayFlags
	RoutineLog string `arg:"" help:"Routine log id or name."`
	Notes      string `arg:"" help:"Notes text. Empty clears them."`
}

func (c *RoutineLogNotesCmd) Run(ctx *cli.Context) error {
	rl, err := findRoutineLog(ctx, c.RoutineLog, c.DayFlags)
	if err != nil {
		return err
	}
	rl.Notes = c.Notes
	if err := ctx.Store.UpdateRoutineLog(rl); err != nil {
		return err
	}
	fmt.Printf("Updated notes on %s\n", rl.Name)
	return nil
}

type RoutineLogDeleteCmd struct {
	DayFlags
	RoutineLog string `arg:"" help:"Routine log id or name."`
}

func (c *RoutineLogDeleteCmd) Run(ctx *cli.Context) error {
	rl, err := findRoutineLog(ctx, c.RoutineLog, c.DayFlags)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteRoutineLog(rl.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted routine log %s\n", rl.Name)
	return nil
}
