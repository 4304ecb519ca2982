// Package daylog resolves calendar days to their Log and RoutineLogs.
package daylog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/utils"
)

type Resolver struct {
	store storage.Provider
	loc   *time.Location
	now   func() time.Time
}

func NewResolver(store storage.Provider, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{store: store, loc: loc, now: time.Now}
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Today returns the current instant in the resolver's location.
func (r *Resolver) Today() time.Time {
	return r.now().In(r.loc)
}

// ResolveDay returns the Log for the calendar day containing date,
// creating it when the day has none. The created Log's id is the epoch
// seconds of date and its Date is date.
func (r *Resolver) ResolveDay(date time.Time) (models.Log, error) {
	start, end, err := utils.DayBounds(date, r.loc)
	if err != nil {
		return models.Log{}, err
	}

	candidate := models.Log{
		ID:     strconv.FormatInt(date.Unix(), 10),
		Date:   date,
		DayKey: utils.DayKey(date, r.loc),
	}
	log, err := r.store.ResolveLog(start, end, candidate)
	if err != nil {
		return models.Log{}, fmt.Errorf("failed to resolve log for %s: %w", candidate.DayKey, err)
	}
	logger.Debug("resolved day", "day", candidate.DayKey, "log", log.ID)
	return log, nil
}

// RoutineLogsForDay returns the day's routine logs ordered by time.
func (r *Resolver) RoutineLogsForDay(date time.Time) ([]models.RoutineLog, error) {
	start, end, err := utils.DayBounds(date, r.loc)
	if err != nil {
		return nil, err
	}
	return r.store.GetRoutineLogs(start, end)
}

// ResolveRoutineLog returns the routine log called name on date's day,
// creating an empty one at date when there is none.
func (r *Resolver) ResolveRoutineLog(date time.Time, name string) (models.RoutineLog, error) {
	start, end, err := utils.DayBounds(date, r.loc)
	if err != nil {
		return models.RoutineLog{}, err
	}
	candidate := models.RoutineLog{
		ID:   uuid.NewString(),
		Name: name,
		Time: date,
	}
	return r.store.ResolveRoutineLog(start, end, candidate)
}

// ChangeDay returns current moved by n days. On failure current is
// returned unchanged along with the error.
func (r *Resolver) ChangeDay(current time.Time, n int) (time.Time, error) {
	next, err := utils.AddDays(current, n, r.loc)
	if err != nil {
		logger.Debug("day change rejected", "current", current, "offset", n, "error", err)
		return current, err
	}
	return next, nil
}
