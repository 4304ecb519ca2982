package products

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/skinlog/internal/catalog"
	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/constants"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/validation"
)

type ProductCmd struct {
	Add     ProductAddCmd     `cmd:"" help:"Add a product."`
	Edit    ProductEditCmd    `cmd:"" help:"Edit a product."`
	Delete  ProductDeleteCmd  `cmd:"" help:"Delete a product (soft delete)."`
	Restore ProductRestoreCmd `cmd:"" help:"Restore a deleted product."`
	Show    ProductShowCmd    `cmd:"" help:"Show a product."`
	List    ProductListCmd    `cmd:"" help:"List products by category."`
}

type ProductAddCmd struct {
	Name        string `arg:"" help:"Product name."`
	Category    string `short:"c" required:"" help:"Category (cleanser|active|hydrator|occlusive|sunscreen|treatment)."`
	Brand       string `short:"b" help:"Brand."`
	Price       string `short:"p" help:"Price, e.g. 12.50."`
	Link        string `help:"Product URL."`
	Expires     string `help:"Expiration date (YYYY-MM-DD)."`
	Ingredients string `help:"Ingredient list."`
	Rating      *int   `short:"r" help:"Rating from 0 to 5."`
	Used        *int   `help:"Number used up."`
	InStash     *int   `help:"Number on hand."`
	Repurchase  *bool  `help:"Would repurchase."`
	Stash       bool   `help:"Also add to the stash."`
	Wish        bool   `help:"Also add to the wish list."`
}

func (c *ProductAddCmd) Run(ctx *cli.Context) error {
	in := validation.ProductInput{
		Name:           c.Name,
		Brand:          c.Brand,
		Category:       c.Category,
		Price:          c.Price,
		Link:           c.Link,
		ExpirationDate: c.Expires,
		Ingredients:    c.Ingredients,
		Rating:         c.Rating,
		NumberUsed:     c.Used,
		NumberInStash:  c.InStash,
		WillRepurchase: c.Repurchase,
	}
	now := time.Now()
	p, err := in.Apply(models.Product{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return err
	}
	if err := ctx.Store.AddProduct(p); err != nil {
		return err
	}
	if c.Stash {
		if err := ctx.Store.AddToCollection(models.CollectionStash, p.ID); err != nil {
			return err
		}
	}
	if c.Wish {
		if err := ctx.Store.AddToCollection(models.CollectionWishList, p.ID); err != nil {
			return err
		}
	}
	fmt.Printf("Added product: %s (%s)\n", p.Name, p.ID)
	return nil
}

type ProductEditCmd struct {
	Product     string  `arg:"" help:"Product id or name."`
	Name        *string `help:"New name."`
	Category    *string `short:"c" help:"New category."`
	Brand       *string `short:"b" help:"New brand."`
	Price       *string `short:"p" help:"New price. Empty clears it."`
	Link        *string `help:"New URL. Empty clears it."`
	Expires     *string `help:"New expiration date. Empty clears it."`
	Ingredients *string `help:"New ingredient list."`
	Rating      *int    `short:"r" help:"New rating from 0 to 5."`
	Used        *int    `help:"New number used up."`
	InStash     *int    `help:"New number on hand."`
	Repurchase  *bool   `help:"Would repurchase."`
}

func (c *ProductEditCmd) Run(ctx *cli.Context) error {
	old, err := ctx.FindProduct(c.Product)
	if err != nil {
		return err
	}

	in := validation.InputFrom(old)
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&in.Name, c.Name)
	set(&in.Category, c.Category)
	set(&in.Brand, c.Brand)
	set(&in.Price, c.Price)
	set(&in.Link, c.Link)
	set(&in.ExpirationDate, c.Expires)
	set(&in.Ingredients, c.Ingredients)
	if c.Rating != nil {
		in.Rating = c.Rating
	}
	if c.Used != nil {
		in.NumberUsed = c.Used
	}
	if c.InStash != nil {
		in.NumberInStash = c.InStash
	}
	if c.Repurchase != nil {
		in.WillRepurchase = c.Repurchase
	}

	updated, err := in.Apply(old)
	if err != nil {
		return err
	}
	changes := models.DiffProduct(old, updated)
	if len(changes) == 0 {
		fmt.Println("Nothing to change.")
		return nil
	}
	for _, change := range changes {
		if err := ctx.Store.ApplyProductChange(old.ID, change); err != nil {
			return err
		}
	}
	fmt.Printf("Updated %s (%d field(s))\n", updated.Name, len(changes))
	return nil
}

type ProductDeleteCmd struct {
	Product string `arg:"" help:"Product id or name."`
}

func (c *ProductDeleteCmd) Run(ctx *cli.Context) error {
	p, err := ctx.FindProduct(c.Product)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteProduct(p.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted product: %s\n", p.Name)
	fmt.Printf("Restore it with: skinlog product restore %s\n", p.ID)
	return nil
}

type ProductRestoreCmd struct {
	ID string `arg:"" help:"Product id."`
}

func (c *ProductRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.RestoreProduct(c.ID); err != nil {
		return err
	}
	p, err := ctx.Store.GetProduct(c.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Restored product: %s\n", p.Name)
	return nil
}

type ProductShowCmd struct {
	Product string `arg:"" help:"Product id or name."`
}

func (c *ProductShowCmd) Run(ctx *cli.Context) error {
	p, err := ctx.FindProduct(c.Product)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", p.Name)
	row := func(label, value string) {
		if value != "" {
			fmt.Printf("  %-12s %s\n", label+":", value)
		}
	}
	row("ID", p.ID)
	row("Brand", p.Brand)
	row("Category", catalog.TitleFor(p.Category))
	if p.PriceCents != nil {
		row("Price", "$"+validation.FormatPrice(*p.PriceCents))
	}
	if p.Link != nil {
		row("Link", *p.Link)
	}
	if p.ExpirationDate != nil {
		exp := p.ExpirationDate.Format(constants.DateFormat)
		if p.Expired(time.Now()) {
			exp += " (expired)"
		}
		row("Expires", exp)
	}
	if p.Rating != nil {
		row("Rating", fmt.Sprintf("%d/5", *p.Rating))
	}
	if p.NumberUsed != nil {
		row("Used", fmt.Sprint(*p.NumberUsed))
	}
	if p.NumberInStash != nil {
		row("On hand", fmt.Sprint(*p.NumberInStash))
	}
	if p.WillRepurchase != nil {
		row("Repurchase", fmt.Sprint(*p.WillRepurchase))
	}
	if p.Ingredients != nil {
		row("Ingredients", *p.Ingredients)
	}
	return nil
}

type ProductListCmd struct {
	Search  string `short:"s" help:"Only products whose name or brand contains this text."`
	Deleted bool   `help:"List deleted products instead."`
}

func (c *ProductListCmd) Run(ctx *cli.Context) error {
	var products []models.Product
	if c.Deleted {
		all, err := ctx.Store.GetAllProductsIncludingDeleted()
		if err != nil {
			return err
		}
		for _, p := range all {
			if p.DeletedAt != nil {
				products = append(products, p)
			}
		}
	} else {
		var err error
		if products, err = ctx.Store.GetAllProducts(); err != nil {
			return err
		}
	}
	return cli.PrintSections(products, c.Search)
}
