package system

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/tui"
)

// debouncer is implemented by stores whose change source batches events.
type debouncer interface {
	SetDebounce(d time.Duration)
}

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if ctx.Config == nil || ctx.Config.Watch.Enabled {
		if src, ok := ctx.Store.(storage.ChangeSource); ok {
			if d, ok := ctx.Store.(debouncer); ok && ctx.Config != nil {
				d.SetDebounce(ctx.Config.Watch.Debounce)
			}
			ctx.Hub.Follow(runCtx, src)
		}
	}

	bridge := tui.NewBridge()
	model := tui.NewModel(ctx.Store, ctx.Resolver, ctx.Hub, bridge)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	go bridge.Run(runCtx, p.Send)

	if _, err := p.Run(); err != nil {
		logger.Error("TUI exited with error", "error", err)
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
