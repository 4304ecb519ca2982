package routines

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

type RoutineCmd struct {
	Add           RoutineAddCmd           `cmd:"" help:"Create a routine."`
	List          RoutineListCmd          `cmd:"" help:"List routines." default:"1"`
	Show          RoutineShowCmd          `cmd:"" help:"Show a routine's products in order."`
	Delete        RoutineDeleteCmd        `cmd:"" help:"Delete a routine."`
	Rename        RoutineRenameCmd        `cmd:"" help:"Rename a routine."`
	AddProduct    RoutineAddProductCmd    `cmd:"" name:"add-product" help:"Append a product to a routine."`
	RemoveProduct RoutineRemoveProductCmd `cmd:"" name:"remove-product" help:"Remove the product at a position."`
	MoveProduct   RoutineMoveProductCmd   `cmd:"" name:"move-product" help:"Move a product within a routine."`
}

type RoutineAddCmd struct {
	Name     string   `arg:"" help:"Routine name, e.g. AM."`
	Products []string `short:"p" help:"Products (id or name) in order."`
}

func (c *RoutineAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.FindRoutine(c.Name); err == nil {
		return fmt.Errorf("routine with name %q already exists", c.Name)
	}
	r := models.Routine{ID: uuid.NewString(), Name: c.Name, CreatedAt: time.Now()}
	for _, ref := range c.Products {
		p, err := ctx.FindProduct(ref)
		if err != nil {
			return err
		}
		r.Products = append(r.Products, p)
	}
	if err := ctx.Store.AddRoutine(r); err != nil {
		return err
	}
	fmt.Printf("Added routine: %s (%d products)\n", r.Name, len(r.Products))
	return nil
}

type RoutineListCmd struct{}

func (c *RoutineListCmd) Run(ctx *cli.Context) error {
	routines, err := ctx.Store.GetAllRoutines()
	if err != nil {
		return err
	}
	if len(routines) == 0 {
		fmt.Println("No routines found.")
		return nil
	}
	for _, r := range routines {
		fmt.Printf("%s (%d products)\n", r.Name, len(r.Products))
	}
	return nil
}

type RoutineShowCmd struct {
	Routine string `arg:"" help:"Routine id or name."`
}

func (c *RoutineShowCmd) Run(ctx *cli.Context) error {
	r, err := ctx.FindRoutine(c.Routine)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", r.Name)
	if len(r.Products) == 0 {
		fmt.Println("  (no products)")
		return nil
	}
	cli.PrintProducts(r.Products)
	return nil
}

type RoutineDeleteCmd struct {
	Routine string `arg:"" help:"Routine id or name."`
}

func (c *RoutineDeleteCmd) Run(ctx *cli.Context) error {
	r, err := ctx.FindRoutine(c.Routine)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteRoutine(r.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted routine: %s\n", r.Name)
	return nil
}

type RoutineRenameCmd struct {
	Routine string `arg:"" help:"Routine id or name."`
	Name    string `arg:"" help:"New name."`
}

func (c *RoutineRenameCmd) Run(ctx *cli.Context) error {
	r, err := ctx.FindRoutine(c.Routine)
	if err != nil {
		return err
	}
	if err := ctx.Store.RenameRoutine(r.ID, c.Name); err != nil {
		return err
	}
	fmt.Printf("Renamed %s to %s\n", r.Name, c.Name)
	return nil
}

type RoutineAddProductCmd struct {
	Routine string `arg:"" help:"Routine id or name."`
	Product string `arg:"" help:"Product id or name."`
}

func (c *RoutineAddProductCmd) Run(ctx *cli.Context) error {
	r, err := ctx.FindRoutine(c.Routine)
	if err != nil {
		return err
	}
	p, err := ctx.FindProduct(c.Product)
	if err != nil {
		return err
	}
	if err := ctx.Store.AddRoutineProduct(r.ID, p.ID); err != nil {
		return err
	}
	fmt.Printf("Added %s to %s\n", p.Name, r.Name)
	return nil
}

type RoutineRemoveProductCmd struct {
	Routine  string `arg:"" help:"Routine id or name."`
	Position int    `arg:"" help:"Position as shown by 'routine show' (1-based)."`
}

func (c *RoutineRemoveProductCmd) Run(ctx *cli.Context) error {
	r, err := ctx.FindRoutine(c.Routine)
	if err != nil {
		return err
	}
	idx := cli.Position(c.Position)
	if idx < 0 || idx >= len(r.Products) {
		return fmt.Errorf("position %d: %w", c.Position, storage.ErrIndexOutOfRange)
	}
	if err := ctx.Store.RemoveRoutineProduct(r.ID, idx); err != nil {
		return err
	}
	fmt.Printf("Removed %s from %s\n", r.Products[idx].Name, r.Name)
	return nil
}

type RoutineMoveProductCmd struct {
	Routine string `arg:"" help:"Routine id or name."`
	From    int    `arg:"" help:"Current position (1-based)."`
	To      int    `arg:"" help:"New position (1-based)."`
}

func (c *RoutineMoveProductCmd) Run(ctx *cli.Context) error {
	r, err := ctx.FindRoutine(c.Routine)
	if err != nil {
		return err
	}
	if err := ctx.Store.MoveRoutineProduct(r.ID, cli.Position(c.From), cli.Position(c.To)); err != nil {
		return err
	}
	fmt.Printf("Moved item %d to position %d in %s\n", c.From, c.To, r.Name)
	return nil
}
