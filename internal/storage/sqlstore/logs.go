package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/utils"
)

// Time values are stored twice: as unix seconds for range predicates and
// as text for exact round-tripping.

func (s *Store) scanLogs(q querier, query string, args ...any) ([]models.Log, error) {
	rows, err := q.Query(s.q(query), args...)
	if err != nil {
		return nil, err
	}
	var logs []models.Log
	for rows.Next() {
		var l models.Log
		var date string
		if err := rows.Scan(&l.ID, &l.DayKey, &date); err != nil {
			rows.Close()
			return nil, err
		}
		if l.Date, err = parseTime(date); err != nil {
			rows.Close()
			return nil, err
		}
		logs = append(logs, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range logs {
		if logs[i].Applications, err = s.applications(q, logs[i].ID); err != nil {
			return nil, err
		}
	}
	if logs == nil {
		logs = []models.Log{}
	}
	return logs, nil
}

func (s *Store) applications(q querier, logID string) ([]models.Application, error) {
	rows, err := q.Query(s.q(`
		SELECT id, log_id, notes, time, routine_id FROM applications
		WHERE log_id = ? ORDER BY time_unix, id`), logID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		var a models.Application
		var at string
		var routineID sql.NullString
		if err := rows.Scan(&a.ID, &a.LogID, &a.Notes, &at, &routineID); err != nil {
			return nil, err
		}
		if a.Time, err = parseTime(at); err != nil {
			return nil, err
		}
		if routineID.Valid {
			a.RoutineID = &routineID.String
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s *Store) findLog(q querier, where string, args ...any) (models.Log, bool, error) {
	logs, err := s.scanLogs(q, `SELECT id, day_key, date FROM logs WHERE `+where+` ORDER BY date_unix, id LIMIT 1`, args...)
	if err != nil || len(logs) == 0 {
		return models.Log{}, false, err
	}
	return logs[0], true, nil
}

// ResolveLog returns the earliest log dated within [start, end]. When there
// is none, candidate is inserted and returned. A concurrent insert for the
// same day is absorbed by the day_key constraint.
//
// Day keys are computed in start's location. A log keyed under another
// location can hold candidate's key while dated on a different day; that
// log is rekeyed before candidate is inserted.
func (s *Store) ResolveLog(start, end time.Time, candidate models.Log) (models.Log, error) {
	var result models.Log
	created := false
	inDay := func(l models.Log) bool { return utils.InRange(l.Date, start, end) }
	err := s.withTx(func(tx *sql.Tx) error {
		found, ok, err := s.findLog(tx, `date_unix >= ? AND date_unix <= ?`, start.Unix(), end.Unix())
		if err != nil {
			return err
		}
		if ok {
			result = found
			return nil
		}

		holder, ok, err := s.findLog(tx, `day_key = ?`, candidate.DayKey)
		if err != nil {
			return err
		}
		if ok && !inDay(holder) {
			if err := s.rekeyLog(tx, holder, start.Location()); err != nil {
				return err
			}
		}

		res, err := tx.Exec(s.q(`INSERT INTO logs (id, day_key, date_unix, date) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`),
			candidate.ID, candidate.DayKey, candidate.Date.Unix(), formatTime(candidate.Date))
		if err != nil {
			return fmt.Errorf("failed to create log: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created = true
			for _, a := range candidate.Applications {
				if err := s.insertApplication(tx, candidate.ID, a); err != nil {
					return err
				}
			}
		}

		found, ok, err = s.findLog(tx, `day_key = ?`, candidate.DayKey)
		if err != nil {
			return err
		}
		if !ok || !inDay(found) {
			return fmt.Errorf("log for %s: %w", candidate.DayKey, storage.ErrNotFound)
		}
		result = found
		return nil
	})
	if err != nil {
		return models.Log{}, err
	}
	if created {
		s.notify(models.ScopeLogs)
	}
	return result, nil
}

// rekeyLog moves l to the day key of its own date in loc, or to a key
// derived from its id when that day is already keyed.
func (s *Store) rekeyLog(tx *sql.Tx, l models.Log, loc *time.Location) error {
	key := utils.DayKey(l.Date, loc)
	if _, taken, err := s.findLog(tx, `day_key = ?`, key); err != nil {
		return err
	} else if taken {
		key = "log:" + l.ID
	}
	if _, err := tx.Exec(s.q(`UPDATE logs SET day_key = ? WHERE id = ?`), key, l.ID); err != nil {
		return fmt.Errorf("failed to rekey log %s: %w", l.ID, err)
	}
	return nil
}

func (s *Store) GetLogs(start, end time.Time) ([]models.Log, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.scanLogs(s.db, `SELECT id, day_key, date FROM logs WHERE date_unix >= ? AND date_unix <= ? ORDER BY date_unix, id`,
		start.Unix(), end.Unix())
}

func (s *Store) GetAllLogs() ([]models.Log, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.scanLogs(s.db, `SELECT id, day_key, date FROM logs ORDER BY date_unix, id`)
}

// SaveLog writes l and replaces its applications.
func (s *Store) SaveLog(l models.Log) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(s.q(`
			INSERT INTO logs (id, day_key, date_unix, date) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET day_key = excluded.day_key, date_unix = excluded.date_unix, date = excluded.date`),
			l.ID, l.DayKey, l.Date.Unix(), formatTime(l.Date))
		if err != nil {
			return fmt.Errorf("failed to save log: %w", err)
		}
		if _, err := tx.Exec(s.q(`DELETE FROM applications WHERE log_id = ?`), l.ID); err != nil {
			return fmt.Errorf("failed to clear applications: %w", err)
		}
		for _, a := range l.Applications {
			if err := s.insertApplication(tx, l.ID, a); err != nil {
				return err
			}
		}
		return nil
	}, models.ScopeLogs)
}

func (s *Store) insertApplication(tx querier, logID string, a models.Application) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.RoutineID != nil {
		if err := s.requireRoutine(tx, *a.RoutineID); err != nil {
			return err
		}
	}
	_, err := tx.Exec(s.q(`INSERT INTO applications (id, log_id, notes, time_unix, time, routine_id) VALUES (?, ?, ?, ?, ?, ?)`),
		a.ID, logID, a.Notes, a.Time.Unix(), formatTime(a.Time), nullString(a.RoutineID))
	if err != nil {
		return fmt.Errorf("failed to add application: %w", err)
	}
	return nil
}

func (s *Store) AddApplication(logID string, app models.Application) error {
	return s.withTx(func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRow(s.q(`SELECT id FROM logs WHERE id = ?`), logID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("log %s: %w", logID, storage.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return s.insertApplication(tx, logID, app)
	}, models.ScopeLogs)
}

func (s *Store) DeleteApplication(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(s.q(`DELETE FROM applications WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete application: %w", err)
		}
		return requireAffected(res, "application", id)
	}, models.ScopeLogs)
}
