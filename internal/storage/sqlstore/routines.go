package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

// AddRoutine saves r and its product list, replacing any routine with the
// same id.
func (s *Store) AddRoutine(r models.Routine) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(s.q(`
			INSERT INTO routines (id, name, created_at) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name`),
			r.ID, r.Name, formatTime(r.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to save routine: %w", err)
		}
		ids := r.ProductIDs()
		if err := s.checkProducts(tx, ids); err != nil {
			return err
		}
		return s.writeList(tx, listRoutine, r.ID, ids)
	}, models.ScopeRoutines)
}

func (s *Store) GetRoutine(id string) (models.Routine, error) {
	if err := s.ready(); err != nil {
		return models.Routine{}, err
	}
	return s.getRoutine(s.db, id)
}

func (s *Store) getRoutine(q querier, id string) (models.Routine, error) {
	var r models.Routine
	var createdAt string
	err := q.QueryRow(s.q(`SELECT id, name, created_at FROM routines WHERE id = ?`), id).Scan(&r.ID, &r.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Routine{}, fmt.Errorf("routine %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Routine{}, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Routine{}, err
	}
	if r.Products, err = s.listProducts(q, listRoutine, r.ID); err != nil {
		return models.Routine{}, err
	}
	return r, nil
}

func (s *Store) GetAllRoutines() ([]models.Routine, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT id FROM routines ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	routines := make([]models.Routine, 0, len(ids))
	for _, id := range ids {
		r, err := s.getRoutine(s.db, id)
		if err != nil {
			return nil, err
		}
		routines = append(routines, r)
	}
	return routines, nil
}

func (s *Store) RenameRoutine(id, name string) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(s.q(`UPDATE routines SET name = ? WHERE id = ?`), name, id)
		if err != nil {
			return fmt.Errorf("failed to rename routine: %w", err)
		}
		return requireAffected(res, "routine", id)
	}, models.ScopeRoutines)
}

// DeleteRoutine removes the routine. Applications that referenced it keep
// their notes and lose the link.
func (s *Store) DeleteRoutine(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.writeList(tx, listRoutine, id, nil); err != nil {
			return err
		}
		if _, err := tx.Exec(s.q(`UPDATE applications SET routine_id = NULL WHERE routine_id = ?`), id); err != nil {
			return fmt.Errorf("failed to unlink applications: %w", err)
		}
		res, err := tx.Exec(s.q(`DELETE FROM routines WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete routine: %w", err)
		}
		return requireAffected(res, "routine", id)
	}, models.ScopeRoutines, models.ScopeLogs)
}

func (s *Store) requireRoutine(tx querier, id string) error {
	var found string
	err := tx.QueryRow(s.q(`SELECT id FROM routines WHERE id = ?`), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("routine %s: %w", id, storage.ErrNotFound)
	}
	return err
}

func (s *Store) AddRoutineProduct(routineID, productID string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.requireRoutine(tx, routineID); err != nil {
			return err
		}
		return s.appendToList(tx, listRoutine, routineID, productID)
	}, models.ScopeRoutines)
}

func (s *Store) RemoveRoutineProduct(routineID string, index int) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.requireRoutine(tx, routineID); err != nil {
			return err
		}
		return s.removeFromList(tx, listRoutine, routineID, index)
	}, models.ScopeRoutines)
}

func (s *Store) MoveRoutineProduct(routineID string, from, to int) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.requireRoutine(tx, routineID); err != nil {
			return err
		}
		return s.moveInList(tx, listRoutine, routineID, from, to)
	}, models.ScopeRoutines)
}
