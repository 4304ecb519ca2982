package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

var productColumnNames = []string{
	"id", "name", "brand", "price_cents", "link", "expiration_date", "category",
	"ingredients", "rating", "number_used", "number_in_stash", "will_repurchase",
	"created_at", "updated_at", "deleted_at",
}

func productColumns(alias string) string {
	if alias == "" {
		return strings.Join(productColumnNames, ", ")
	}
	cols := make([]string, len(productColumnNames))
	for i, c := range productColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// fieldColumns maps a single-field change to the column it writes.
var fieldColumns = map[models.ProductField]string{
	models.FieldName:           "name",
	models.FieldBrand:          "brand",
	models.FieldPrice:          "price_cents",
	models.FieldLink:           "link",
	models.FieldExpirationDate: "expiration_date",
	models.FieldCategory:       "category",
	models.FieldIngredients:    "ingredients",
	models.FieldRating:         "rating",
	models.FieldNumberUsed:     "number_used",
	models.FieldNumberInStash:  "number_in_stash",
	models.FieldWillRepurchase: "will_repurchase",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var category, createdAt, updatedAt string
	var price sql.NullInt64
	var link, expiration, ingredients, deletedAt sql.NullString
	var rating, numberUsed, numberInStash sql.NullInt64
	var repurchase sql.NullBool

	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &price, &link, &expiration, &category,
		&ingredients, &rating, &numberUsed, &numberInStash, &repurchase,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return models.Product{}, err
	}

	p.Category = models.Category(category)
	if price.Valid {
		p.PriceCents = &price.Int64
	}
	if link.Valid {
		p.Link = &link.String
	}
	if ingredients.Valid {
		p.Ingredients = &ingredients.String
	}
	p.Rating = intPtr(rating)
	p.NumberUsed = intPtr(numberUsed)
	p.NumberInStash = intPtr(numberInStash)
	if repurchase.Valid {
		p.WillRepurchase = &repurchase.Bool
	}
	if p.ExpirationDate, err = parseTimePtr(expiration); err != nil {
		return models.Product{}, err
	}
	if p.DeletedAt, err = parseTimePtr(deletedAt); err != nil {
		return models.Product{}, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Product{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// fieldValue returns the column value a change writes.
func fieldValue(c models.ProductFieldChange) (any, error) {
	switch v := c.(type) {
	case models.NameChanged:
		return v.Name, nil
	case models.BrandChanged:
		return v.Brand, nil
	case models.PriceChanged:
		if v.Cents == nil {
			return sql.NullInt64{}, nil
		}
		return sql.NullInt64{Int64: *v.Cents, Valid: true}, nil
	case models.LinkChanged:
		return nullString(v.Link), nil
	case models.ExpirationChanged:
		return formatTimePtr(v.Date), nil
	case models.CategoryChanged:
		return string(v.Category), nil
	case models.IngredientsChanged:
		return nullString(v.Ingredients), nil
	case models.RatingChanged:
		return nullInt(v.Rating), nil
	case models.NumberUsedChanged:
		return nullInt(v.Count), nil
	case models.NumberInStashChanged:
		return nullInt(v.Count), nil
	case models.WillRepurchaseChanged:
		if v.Value == nil {
			return sql.NullBool{}, nil
		}
		return sql.NullBool{Bool: *v.Value, Valid: true}, nil
	}
	return nil, fmt.Errorf("unsupported product change %T", c)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// AddProduct inserts p, or replaces the stored row with the same id.
func (s *Store) AddProduct(p models.Product) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return s.withTx(func(tx *sql.Tx) error {
		return s.upsertProduct(tx, p)
	}, models.ScopeProducts)
}

func (s *Store) upsertProduct(tx querier, p models.Product) error {
	var repurchase sql.NullBool
	if p.WillRepurchase != nil {
		repurchase = sql.NullBool{Bool: *p.WillRepurchase, Valid: true}
	}
	var price sql.NullInt64
	if p.PriceCents != nil {
		price = sql.NullInt64{Int64: *p.PriceCents, Valid: true}
	}

	_, err := tx.Exec(s.q(`
		INSERT INTO products (`+productColumns("")+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			price_cents = excluded.price_cents,
			link = excluded.link,
			expiration_date = excluded.expiration_date,
			category = excluded.category,
			ingredients = excluded.ingredients,
			rating = excluded.rating,
			number_used = excluded.number_used,
			number_in_stash = excluded.number_in_stash,
			will_repurchase = excluded.will_repurchase,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`),
		p.ID, p.Name, p.Brand, price, nullString(p.Link), formatTimePtr(p.ExpirationDate),
		string(p.Category), nullString(p.Ingredients), nullInt(p.Rating), nullInt(p.NumberUsed),
		nullInt(p.NumberInStash), repurchase,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt), formatTimePtr(p.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(id string) (models.Product, error) {
	if err := s.ready(); err != nil {
		return models.Product{}, err
	}
	return s.getProduct(s.db, id)
}

func (s *Store) getProduct(q querier, id string) (models.Product, error) {
	row := q.QueryRow(s.q(`SELECT `+productColumns("")+` FROM products WHERE id = ? AND deleted_at IS NULL`), id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, fmt.Errorf("product %s: %w", id, storage.ErrNotFound)
	}
	return p, err
}

func (s *Store) GetAllProducts() ([]models.Product, error) {
	return s.queryProducts(`SELECT ` + productColumns("") + ` FROM products WHERE deleted_at IS NULL ORDER BY name, id`)
}

func (s *Store) GetAllProductsIncludingDeleted() ([]models.Product, error) {
	return s.queryProducts(`SELECT ` + productColumns("") + ` FROM products ORDER BY name, id`)
}

func (s *Store) queryProducts(query string, args ...any) ([]models.Product, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.queryProductsWith(s.db, query, args...)
}

func (s *Store) queryProductsWith(q querier, query string, args ...any) ([]models.Product, error) {
	rows, err := q.Query(s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct overwrites every field of an existing, non-deleted product.
func (s *Store) UpdateProduct(p models.Product) error {
	return s.withTx(func(tx *sql.Tx) error {
		old, err := s.getProduct(tx, p.ID)
		if err != nil {
			return err
		}
		p.CreatedAt = old.CreatedAt
		p.DeletedAt = nil
		p.UpdatedAt = time.Now()
		return s.upsertProduct(tx, p)
	}, models.ScopeProducts)
}

// ApplyProductChange writes a single field.
func (s *Store) ApplyProductChange(id string, change models.ProductFieldChange) error {
	col, ok := fieldColumns[change.Field()]
	if !ok {
		return fmt.Errorf("unknown product field %q", change.Field())
	}
	value, err := fieldValue(change)
	if err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(s.q(`UPDATE products SET `+col+` = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`),
			value, formatTime(time.Now()), id)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return requireAffected(res, "product", id)
	}, models.ScopeProducts)
}

// DeleteProduct soft-deletes a product and drops it from every list that
// references it.
func (s *Store) DeleteProduct(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		now := formatTime(time.Now())
		res, err := tx.Exec(s.q(`UPDATE products SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`),
			now, now, id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		if err := requireAffected(res, "product", id); err != nil {
			return err
		}
		return s.purgeFromLists(tx, id)
	}, models.ScopeProducts, models.ScopeStash, models.ScopeWishList, models.ScopeRoutines, models.ScopeRoutineLogs)
}

func (s *Store) RestoreProduct(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(s.q(`UPDATE products SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`),
			formatTime(time.Now()), id)
		if err != nil {
			return fmt.Errorf("failed to restore product: %w", err)
		}
		return requireAffected(res, "deleted product", id)
	}, models.ScopeProducts)
}
