// Package collections holds the stash and wish list commands. Both lists
// share one implementation keyed by collection kind.
package collections

import (
	"fmt"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

type StashCmd struct {
	List   StashListCmd   `cmd:"" help:"List the stash by category." default:"1"`
	Add    StashAddCmd    `cmd:"" help:"Add a product to the stash."`
	Remove StashRemoveCmd `cmd:"" help:"Remove the product at a position."`
	Move   StashMoveCmd   `cmd:"" help:"Move a product to a new position."`
}

type WishCmd struct {
	List   WishListCmd   `cmd:"" help:"List the wish list by category." default:"1"`
	Add    WishAddCmd    `cmd:"" help:"Add a product to the wish list."`
	Remove WishRemoveCmd `cmd:"" help:"Remove the product at a position."`
	Move   WishMoveCmd   `cmd:"" help:"Move a product to a new position."`
}

type ListArgs struct {
	Search string `short:"s" help:"Only products whose name or brand contains this text."`
	Order  bool   `help:"Show stored order with positions instead of categories."`
}

type AddArgs struct {
	Product string `arg:"" help:"Product id or name."`
}

type RemoveArgs struct {
	Position int `arg:"" help:"Position as shown by 'list --order' (1-based)."`
}

type MoveArgs struct {
	From int `arg:"" help:"Current position (1-based)."`
	To   int `arg:"" help:"New position (1-based)."`
}

type StashListCmd struct{ ListArgs }
type StashAddCmd struct{ AddArgs }
type StashRemoveCmd struct{ RemoveArgs }
type StashMoveCmd struct{ MoveArgs }

type WishListCmd struct{ ListArgs }
type WishAddCmd struct{ AddArgs }
type WishRemoveCmd struct{ RemoveArgs }
type WishMoveCmd struct{ MoveArgs }

func (c *StashListCmd) Run(ctx *cli.Context) error   { return c.run(ctx, models.CollectionStash) }
func (c *StashAddCmd) Run(ctx *cli.Context) error    { return c.run(ctx, models.CollectionStash) }
func (c *StashRemoveCmd) Run(ctx *cli.Context) error { return c.run(ctx, models.CollectionStash) }
func (c *StashMoveCmd) Run(ctx *cli.Context) error   { return c.run(ctx, models.CollectionStash) }

func (c *WishListCmd) Run(ctx *cli.Context) error   { return c.run(ctx, models.CollectionWishList) }
func (c *WishAddCmd) Run(ctx *cli.Context) error    { return c.run(ctx, models.CollectionWishList) }
func (c *WishRemoveCmd) Run(ctx *cli.Context) error { return c.run(ctx, models.CollectionWishList) }
func (c *WishMoveCmd) Run(ctx *cli.Context) error   { return c.run(ctx, models.CollectionWishList) }

func title(kind models.CollectionKind) string {
	if kind == models.CollectionWishList {
		return "wish list"
	}
	return "stash"
}

func (a ListArgs) run(ctx *cli.Context, kind models.CollectionKind) error {
	c, err := ctx.Store.GetCollection(kind)
	if err != nil {
		return err
	}
	if a.Order {
		if len(c.Products) == 0 {
			fmt.Printf("The %s is empty.\n", title(kind))
			return nil
		}
		cli.PrintProducts(c.Products)
		return nil
	}
	return cli.PrintSections(c.Products, a.Search)
}

func (a AddArgs) run(ctx *cli.Context, kind models.CollectionKind) error {
	p, err := ctx.FindProduct(a.Product)
	if err != nil {
		return err
	}
	if err := ctx.Store.AddToCollection(kind, p.ID); err != nil {
		return err
	}
	fmt.Printf("Added %s to the %s\n", p.Name, title(kind))
	return nil
}

func (a RemoveArgs) run(ctx *cli.Context, kind models.CollectionKind) error {
	c, err := ctx.Store.GetCollection(kind)
	if err != nil {
		return err
	}
	idx := cli.Position(a.Position)
	if idx < 0 || idx >= len(c.Products) {
		return fmt.Errorf("position %d: %w", a.Position, storage.ErrIndexOutOfRange)
	}
	name := c.Products[idx].Name
	if err := ctx.Store.RemoveFromCollection(kind, idx); err != nil {
		return err
	}
	fmt.Printf("Removed %s from the %s\n", name, title(kind))
	return nil
}

func (a MoveArgs) run(ctx *cli.Context, kind models.CollectionKind) error {
	if err := ctx.Store.MoveInCollection(kind, cli.Position(a.From), cli.Position(a.To)); err != nil {
		return err
	}
	fmt.Printf("Moved item %d to position %d in the %s\n", a.From, a.To, title(kind))
	return nil
}
