package logs

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

// DayFlags select a day relative to today.
type DayFlags struct {
	Date   string `short:"d" help:"Date in YYYY-MM-DD format (default: today)."`
	Offset int    `short:"o" help:"Days to move from the date, e.g. -1 for the day before."`
}

type LogCmd struct {
	Show   LogShowCmd   `cmd:"" help:"Show a day's log." default:"1"`
	Apply  LogApplyCmd  `cmd:"" help:"Record an application."`
	Remove LogRemoveCmd `cmd:"" help:"Remove an application."`
}

type LogShowCmd struct {
	DayFlags
}

func (c *LogShowCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Date, c.Offset)
	if err != nil {
		return err
	}
	l, err := ctx.Resolver.ResolveDay(day)
	if err != nil {
		return err
	}
	routineLogs, err := ctx.Resolver.RoutineLogsForDay(day)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", day.Format("Monday, January 2, 2006"))
	if len(l.Applications) == 0 && len(routineLogs) == 0 {
		fmt.Println("  Nothing logged.")
		return nil
	}

	names := routineNames(ctx)
	for i, a := range l.Applications {
		label := "application"
		if a.RoutineID != nil {
			if name, ok := names[*a.RoutineID]; ok {
				label = name
			}
		}
		fmt.Printf("  %d. %s  %s", i+1, a.Time.In(ctx.Resolver.Location()).Format(constants.TimeFormat), label)
		if a.Notes != "" {
			fmt.Printf(" - %s", a.Notes)
		}
		fmt.Println()
	}
	for _, rl := range routineLogs {
		fmt.Printf("\n  %s routine at %s (%s)\n", rl.Name, rl.Time.In(ctx.Resolver.Location()).Format(constants.TimeFormat), rl.ID)
		if rl.Notes != "" {
			fmt.Printf("  Notes: %s\n", rl.Notes)
		}
		cli.PrintProducts(rl.Products)
	}
	return nil
}

func routineNames(ctx *cli.Context) map[string]string {
	names := map[string]string{}
	routines, err := ctx.Store.GetAllRoutines()
	if err != nil {
		return names
	}
	for _, r := range routines {
		names[r.ID] = r.Name
	}
	return names
}

type LogApplyCmd struct {
	DayFlags
	Routine string `short:"r" help:"Routine id or name performed."`
	Notes   string `short:"n" help:"Notes."`
	Time    string `short:"t" help:"Time of day (HH:MM, default: now)."`
}

func (c *LogApplyCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Date, c.Offset)
	if err != nil {
		return err
	}
	at, err := ctx.At(day, c.Time)
	if err != nil {
		return err
	}

	app := models.Application{ID: uuid.NewString(), Notes: c.Notes, Time: at}
	if c.Routine != "" {
		r, err := ctx.FindRoutine(c.Routine)
		if err != nil {
			return err
		}
		app.RoutineID = &r.ID
	}

	l, err := ctx.Resolver.ResolveDay(day)
	if err != nil {
		return err
	}
	if err := ctx.Store.AddApplication(l.ID, app); err != nil {
		return err
	}
	fmt.Printf("Logged application at %s on %s\n", at.Format(constants.TimeFormat), l.DayKey)
	return nil
}

type LogRemoveCmd struct {
	DayFlags
	Application string `arg:"" help:"Application id, or its position in 'log show'."`
}

func (c *LogRemoveCmd) Run(ctx *cli.Context) error {
	id := c.Application
	if pos, err := strconv.Atoi(c.Application); err == nil {
		day, err := ctx.Day(c.Date, c.Offset)
		if err != nil {
			return err
		}
		l, err := ctx.Resolver.ResolveDay(day)
		if err != nil {
			return err
		}
		idx := cli.Position(pos)
		if idx < 0 || idx >= len(l.Applications) {
			return fmt.Errorf("position %d: %w", pos, storage.ErrIndexOutOfRange)
		}
		id = l.Applications[idx].ID
	}
	if err := ctx.Store.DeleteApplication(id); err != nil {
		return err
	}
	fmt.Println("Removed application.")
	return nil
}
