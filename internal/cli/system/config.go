package system

import (
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/config"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration." default:"1"`
	Init ConfigInitCmd `cmd:"" help:"Write the effective configuration to the config file."`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	if ctx.Config == nil {
		return errors.New("no configuration loaded")
	}
	shown := *ctx.Config
	if config.IsPostgres(shown.Database) {
		shown.Database = maskPassword(shown.Database)
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return err
	}
	if ctx.ConfigPath != "" {
		fmt.Printf("# %s\n", ctx.ConfigPath)
	}
	fmt.Print(string(data))
	return nil
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

func (c *ConfigInitCmd) Run(ctx *cli.Context) error {
	if ctx.Config == nil || ctx.ConfigPath == "" {
		return errors.New("no configuration loaded")
	}
	if _, err := os.Stat(ctx.ConfigPath); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", ctx.ConfigPath)
	}
	if err := ctx.Config.Save(ctx.ConfigPath); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %s\n", ctx.ConfigPath)
	return nil
}
