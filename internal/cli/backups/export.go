package backups

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/export"
)

type ExportCmd struct {
	File string `arg:"" help:"Destination YAML file, or - for stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	doc, err := export.Export(ctx.Store)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.File != "-" {
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, doc); err != nil {
		return err
	}
	if c.File != "-" {
		fmt.Printf("Exported %d products, %d routines and %d logs to %s\n",
			len(doc.Products), len(doc.Routines), len(doc.Logs), c.File)
	}
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"YAML file written by 'skinlog export'." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := export.Read(f)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	sum, err := export.Import(ctx.Store, doc, ctx.Resolver.Location())
	if err != nil {
		return fmt.Errorf("import failed after %s: %w", sum, err)
	}
	fmt.Printf("Imported %s\n", sum)
	return nil
}
