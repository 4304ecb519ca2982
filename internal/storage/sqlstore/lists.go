package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

// listKind tags the owner of an ordered product list in list_items.
type listKind string

const (
	listStash      listKind = listKind(models.CollectionStash)
	listWishList   listKind = listKind(models.CollectionWishList)
	listRoutine    listKind = "routine"
	listRoutineLog listKind = "routine_log"
)

func (s *Store) listProducts(q querier, kind listKind, ownerID string) ([]models.Product, error) {
	return s.queryProductsWith(q, `
		SELECT `+productColumns("p")+`
		FROM list_items li
		JOIN products p ON p.id = li.product_id
		WHERE li.list_kind = ? AND li.list_id = ? AND p.deleted_at IS NULL
		ORDER BY li.position`, string(kind), ownerID)
}

func (s *Store) listIDs(q querier, kind listKind, ownerID string) ([]string, error) {
	rows, err := q.Query(s.q(`SELECT product_id FROM list_items WHERE list_kind = ? AND list_id = ? ORDER BY position`),
		string(kind), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// writeList replaces the list with ids at positions 0..n-1.
func (s *Store) writeList(tx querier, kind listKind, ownerID string, ids []string) error {
	if _, err := tx.Exec(s.q(`DELETE FROM list_items WHERE list_kind = ? AND list_id = ?`), string(kind), ownerID); err != nil {
		return fmt.Errorf("failed to clear list: %w", err)
	}
	for i, id := range ids {
		if _, err := tx.Exec(s.q(`INSERT INTO list_items (list_kind, list_id, position, product_id) VALUES (?, ?, ?, ?)`),
			string(kind), ownerID, i, id); err != nil {
			return fmt.Errorf("failed to write list item: %w", err)
		}
	}
	return nil
}

func (s *Store) appendToList(tx querier, kind listKind, ownerID, productID string) error {
	if _, err := s.getProduct(tx, productID); err != nil {
		return err
	}
	ids, err := s.listIDs(tx, kind, ownerID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == productID {
			return fmt.Errorf("product %s: %w", productID, storage.ErrDuplicate)
		}
	}
	_, err = tx.Exec(s.q(`INSERT INTO list_items (list_kind, list_id, position, product_id) VALUES (?, ?, ?, ?)`),
		string(kind), ownerID, len(ids), productID)
	if err != nil {
		return fmt.Errorf("failed to add list item: %w", err)
	}
	return nil
}

func (s *Store) removeFromList(tx querier, kind listKind, ownerID string, index int) error {
	ids, err := s.listIDs(tx, kind, ownerID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(ids) {
		return fmt.Errorf("remove at %d of %d: %w", index, len(ids), storage.ErrIndexOutOfRange)
	}
	ids = append(ids[:index], ids[index+1:]...)
	return s.writeList(tx, kind, ownerID, ids)
}

// moveInList removes the item at from and reinserts it at to.
func (s *Store) moveInList(tx querier, kind listKind, ownerID string, from, to int) error {
	ids, err := s.listIDs(tx, kind, ownerID)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return fmt.Errorf("move %d to %d of %d: %w", from, to, len(ids), storage.ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}
	return s.writeList(tx, kind, ownerID, move(ids, from, to))
}

func move(ids []string, from, to int) []string {
	out := make([]string, 0, len(ids))
	item := ids[from]
	for i, id := range ids {
		if i != from {
			out = append(out, id)
		}
	}
	out = append(out[:to], append([]string{item}, out[to:]...)...)
	return out
}

// purgeFromLists removes productID from every list and compacts positions.
func (s *Store) purgeFromLists(tx querier, productID string) error {
	rows, err := tx.Query(s.q(`SELECT DISTINCT list_kind, list_id FROM list_items WHERE product_id = ?`), productID)
	if err != nil {
		return err
	}
	type owner struct {
		kind listKind
		id   string
	}
	var owners []owner
	for rows.Next() {
		var o owner
		var kind string
		if err := rows.Scan(&kind, &o.id); err != nil {
			rows.Close()
			return err
		}
		o.kind = listKind(kind)
		owners = append(owners, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, o := range owners {
		ids, err := s.listIDs(tx, o.kind, o.id)
		if err != nil {
			return err
		}
		kept := ids[:0]
		for _, id := range ids {
			if id != productID {
				kept = append(kept, id)
			}
		}
		if err := s.writeList(tx, o.kind, o.id, kept); err != nil {
			return err
		}
	}
	return nil
}

// Collections

func (s *Store) ensureCollection(tx querier, kind models.CollectionKind) (string, error) {
	var id string
	err := tx.QueryRow(s.q(`SELECT id FROM collections WHERE kind = ?`), string(kind)).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if _, err := tx.Exec(s.q(`INSERT INTO collections (id, kind) VALUES (?, ?) ON CONFLICT DO NOTHING`),
		uuid.NewString(), string(kind)); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", kind, err)
	}
	if err := tx.QueryRow(s.q(`SELECT id FROM collections WHERE kind = ?`), string(kind)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// GetCollection returns the singleton collection of kind, creating it on
// first access.
func (s *Store) GetCollection(kind models.CollectionKind) (models.Collection, error) {
	var c models.Collection
	err := s.withTx(func(tx *sql.Tx) error {
		id, err := s.ensureCollection(tx, kind)
		if err != nil {
			return err
		}
		products, err := s.listProducts(tx, listKind(kind), id)
		if err != nil {
			return err
		}
		c = models.Collection{ID: id, Kind: kind, Products: products}
		return nil
	})
	return c, err
}

func (s *Store) AddToCollection(kind models.CollectionKind, productID string) error {
	return s.withTx(func(tx *sql.Tx) error {
		id, err := s.ensureCollection(tx, kind)
		if err != nil {
			return err
		}
		return s.appendToList(tx, listKind(kind), id, productID)
	}, kind.Scope())
}

func (s *Store) RemoveFromCollection(kind models.CollectionKind, index int) error {
	return s.withTx(func(tx *sql.Tx) error {
		id, err := s.ensureCollection(tx, kind)
		if err != nil {
			return err
		}
		return s.removeFromList(tx, listKind(kind), id, index)
	}, kind.Scope())
}

func (s *Store) MoveInCollection(kind models.CollectionKind, from, to int) error {
	return s.withTx(func(tx *sql.Tx) error {
		id, err := s.ensureCollection(tx, kind)
		if err != nil {
			return err
		}
		return s.moveInList(tx, listKind(kind), id, from, to)
	}, kind.Scope())
}

// SetCollectionProducts replaces the collection's contents. Unknown or
// deleted product ids are rejected.
func (s *Store) SetCollectionProducts(kind models.CollectionKind, productIDs []string) error {
	return s.withTx(func(tx *sql.Tx) error {
		id, err := s.ensureCollection(tx, kind)
		if err != nil {
			return err
		}
		if err := s.checkProducts(tx, productIDs); err != nil {
			return err
		}
		return s.writeList(tx, listKind(kind), id, productIDs)
	}, kind.Scope())
}

func (s *Store) checkProducts(tx querier, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("product %s: %w", id, storage.ErrDuplicate)
		}
		seen[id] = true
		if _, err := s.getProduct(tx, id); err != nil {
			return err
		}
	}
	return nil
}
