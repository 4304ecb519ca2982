package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

const routineLogColumns = `id, name, notes, time`

func (s *Store) scanRoutineLogs(q querier, query string, args ...any) ([]models.RoutineLog, error) {
	rows, err := q.Query(s.q(query), args...)
	if err != nil {
		return nil, err
	}
	var out []models.RoutineLog
	for rows.Next() {
		var rl models.RoutineLog
		var at string
		if err := rows.Scan(&rl.ID, &rl.Name, &rl.Notes, &at); err != nil {
			rows.Close()
			return nil, err
		}
		if rl.Time, err = parseTime(at); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, rl)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Products, err = s.listProducts(q, listRoutineLog, out[i].ID); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []models.RoutineLog{}
	}
	return out, nil
}

// ResolveRoutineLog returns the routine log named candidate.Name within
// [start, end], inserting candidate when none exists.
func (s *Store) ResolveRoutineLog(start, end time.Time, candidate models.RoutineLog) (models.RoutineLog, error) {
	var result models.RoutineLog
	created := false
	err := s.withTx(func(tx *sql.Tx) error {
		found, err := s.scanRoutineLogs(tx, `SELECT `+routineLogColumns+` FROM routine_logs
			WHERE name = ? AND time_unix >= ? AND time_unix <= ? ORDER BY time_unix, id LIMIT 1`,
			candidate.Name, start.Unix(), end.Unix())
		if err != nil {
			return err
		}
		if len(found) > 0 {
			result = found[0]
			return nil
		}
		if err := s.saveRoutineLog(tx, candidate); err != nil {
			return err
		}
		created = true
		result, err = s.getRoutineLog(tx, candidate.ID)
		return err
	})
	if err != nil {
		return models.RoutineLog{}, err
	}
	if created {
		s.notify(models.ScopeRoutineLogs)
	}
	return result, nil
}

func (s *Store) GetRoutineLog(id string) (models.RoutineLog, error) {
	if err := s.ready(); err != nil {
		return models.RoutineLog{}, err
	}
	return s.getRoutineLog(s.db, id)
}

func (s *Store) getRoutineLog(q querier, id string) (models.RoutineLog, error) {
	found, err := s.scanRoutineLogs(q, `SELECT `+routineLogColumns+` FROM routine_logs WHERE id = ?`, id)
	if err != nil {
		return models.RoutineLog{}, err
	}
	if len(found) == 0 {
		return models.RoutineLog{}, fmt.Errorf("routine log %s: %w", id, storage.ErrNotFound)
	}
	return found[0], nil
}

func (s *Store) GetRoutineLogs(start, end time.Time) ([]models.RoutineLog, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.scanRoutineLogs(s.db, `SELECT `+routineLogColumns+` FROM routine_logs
		WHERE time_unix >= ? AND time_unix <= ? ORDER BY time_unix, id`, start.Unix(), end.Unix())
}

func (s *Store) GetAllRoutineLogs() ([]models.RoutineLog, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.scanRoutineLogs(s.db, `SELECT `+routineLogColumns+` FROM routine_logs ORDER BY time_unix, id`)
}

// SaveRoutineLog writes rl and replaces its product list.
func (s *Store) SaveRoutineLog(rl models.RoutineLog) error {
	return s.withTx(func(tx *sql.Tx) error {
		return s.saveRoutineLog(tx, rl)
	}, models.ScopeRoutineLogs)
}

func (s *Store) saveRoutineLog(tx querier, rl models.RoutineLog) error {
	_, err := tx.Exec(s.q(`
		INSERT INTO routine_logs (id, name, notes, time_unix, time) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, notes = excluded.notes,
			time_unix = excluded.time_unix, time = excluded.time`),
		rl.ID, rl.Name, rl.Notes, rl.Time.Unix(), formatTime(rl.Time))
	if err != nil {
		return fmt.Errorf("failed to save routine log: %w", err)
	}
	ids := rl.ProductIDs()
	if err := s.checkProducts(tx, ids); err != nil {
		return err
	}
	return s.writeList(tx, listRoutineLog, rl.ID, ids)
}

// UpdateRoutineLog changes name, notes and time. Products are edited with
// the list operations.
func (s *Store) UpdateRoutineLog(rl models.RoutineLog) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(s.q(`UPDATE routine_logs SET name = ?, notes = ?, time_unix = ?, time = ? WHERE id = ?`),
			rl.Name, rl.Notes, rl.Time.Unix(), formatTime(rl.Time), rl.ID)
		if err != nil {
			return fmt.Errorf("failed to update routine log: %w", err)
		}
		return requireAffected(res, "routine log", rl.ID)
	}, models.ScopeRoutineLogs)
}

func (s *Store) DeleteRoutineLog(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.writeList(tx, listRoutineLog, id, nil); err != nil {
			return err
		}
		res, err := tx.Exec(s.q(`DELETE FROM routine_logs WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete routine log: %w", err)
		}
		return requireAffected(res, "routine log", id)
	}, models.ScopeRoutineLogs)
}

func (s *Store) requireRoutineLog(tx querier, id string) error {
	var found string
	err := tx.QueryRow(s.q(`SELECT id FROM routine_logs WHERE id = ?`), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("routine log %s: %w", id, storage.ErrNotFound)
	}
	return err
}

func (s *Store) AddRoutineLogProduct(routineLogID, productID string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.requireRoutineLog(tx, routineLogID); err != nil {
			return err
		}
		return s.appendToList(tx, listRoutineLog, routineLogID, productID)
	}, models.ScopeRoutineLogs)
}

func (s *Store) RemoveRoutineLogProduct(routineLogID string, index int) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.requireRoutineLog(tx, routineLogID); err != nil {
			return err
		}
		return s.removeFromList(tx, listRoutineLog, routineLogID, index)
	}, models.ScopeRoutineLogs)
}

func (s *Store) MoveRoutineLogProduct(routineLogID string, from, to int) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.requireRoutineLog(tx, routineLogID); err != nil {
			return err
		}
		return s.moveInList(tx, listRoutineLog, routineLogID, from, to)
	}, models.ScopeRoutineLogs)
}
