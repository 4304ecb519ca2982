package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/utils"
)

type DebugCmd struct {
	DBPath      DebugDBPathCmd      `cmd:"" help:"Show database path."`
	DumpProduct DebugDumpProductCmd `cmd:"" help:"Dump product data as JSON."`
	DumpDay     DebugDumpDayCmd     `cmd:"" help:"Dump a day's logs as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpProductCmd struct {
	Product string `arg:"" help:"Product id or name."`
}

func (cmd *DebugDumpProductCmd) Run(ctx *cli.Context) error {
	p, err := ctx.FindProduct(cmd.Product)
	if err != nil {
		return err
	}
	return printJSON(p)
}

type DebugDumpDayCmd struct {
	Date string `arg:"" optional:"" help:"Date to dump (YYYY-MM-DD, default today)."`
}

// dayDump is a read-only view of a day; no Log is created for empty days.
type dayDump struct {
	Day         string              `json:"day"`
	Logs        []models.Log        `json:"logs"`
	RoutineLogs []models.RoutineLog `json:"routine_logs"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(cmd.Date, 0)
	if err != nil {
		return err
	}
	start, end, err := utils.DayBounds(day, ctx.Resolver.Location())
	if err != nil {
		return err
	}
	logs, err := ctx.Store.GetLogs(start, end)
	if err != nil {
		return fmt.Errorf("failed to get logs: %w", err)
	}
	routineLogs, err := ctx.Resolver.RoutineLogsForDay(day)
	if err != nil {
		return fmt.Errorf("failed to get routine logs: %w", err)
	}
	return printJSON(dayDump{
		Day:         utils.DayKey(day, ctx.Resolver.Location()),
		Logs:        logs,
		RoutineLogs: routineLogs,
	})
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
