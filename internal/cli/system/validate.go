package system

import (
	"fmt"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	fmt.Println("Validating catalog...")
	result, err := validateCatalog(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(result.FormatReport())
	// Conflicts are reported, not failed on.
	return nil
}

func validateCatalog(ctx *cli.Context) (validation.ValidationResult, error) {
	products, err := ctx.Store.GetAllProducts()
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to get products: %w", err)
	}
	stash, err := ctx.Store.GetCollection(models.CollectionStash)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to get stash: %w", err)
	}
	wish, err := ctx.Store.GetCollection(models.CollectionWishList)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to get wish list: %w", err)
	}
	routines, err := ctx.Store.GetAllRoutines()
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to get routines: %w", err)
	}

	return validation.New().ValidateCatalog(validation.Catalog{
		Products: products,
		Stash:    stash.Products,
		WishList: wish.Products,
		Routines: routines,
	}), nil
}
