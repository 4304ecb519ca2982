package daylog

import (
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/julianstephens/skinlog/internal/storage/sqlite"
	"github.com/julianstephens/skinlog/internal/utils"
)

func setupResolver(t *testing.T, tz string) (*Resolver, *sqlite.Store) {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("failed to load %s: %v", tz, err)
	}
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewResolver(store, loc), store
}

func TestResolveDayExample(t *testing.T) {
	r, _ := setupResolver(t, "America/New_York")
	midnight := time.Date(2018, 3, 6, 0, 0, 0, 0, r.Location())

	log, err := r.ResolveDay(midnight)
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}
	want := strconv.FormatInt(midnight.Unix(), 10)
	if log.ID != want {
		t.Errorf("expected id %s, got %s", want, log.ID)
	}
	if log.DayKey != "2018-03-06" {
		t.Errorf("expected day key 2018-03-06, got %s", log.DayKey)
	}
	if !log.Date.Equal(midnight) {
		t.Errorf("expected date %v, got %v", midnight, log.Date)
	}

	again, err := r.ResolveDay(midnight)
	if err != nil {
		t.Fatalf("second ResolveDay failed: %v", err)
	}
	if again.ID != log.ID {
		t.Errorf("ResolveDay is not idempotent: %s then %s", log.ID, again.ID)
	}
}

func TestResolveDaySameDayDifferentInstant(t *testing.T) {
	r, store := setupResolver(t, "America/New_York")
	morning := time.Date(2018, 3, 6, 0, 0, 0, 0, r.Location())
	lastSecond := time.Date(2018, 3, 6, 23, 59, 59, 0, r.Location())

	first, _ := r.ResolveDay(morning)
	second, err := r.ResolveDay(lastSecond)
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected 23:59:59 to resolve to the same log")
	}

	// Neighbouring days resolve to their own logs.
	prev, _ := r.ResolveDay(time.Date(2018, 3, 5, 23, 59, 59, 0, r.Location()))
	next, _ := r.ResolveDay(time.Date(2018, 3, 7, 0, 0, 0, 0, r.Location()))
	if prev.ID == first.ID || next.ID == first.ID {
		t.Errorf("neighbouring days shared a log")
	}
	all, _ := store.GetAllLogs()
	if len(all) != 3 {
		t.Errorf("expected 3 logs, got %d", len(all))
	}
}

func TestResolveDayAfterTimezoneChange(t *testing.T) {
	utc, store := setupResolver(t, "UTC")
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// 02:00Z on Mar 6 is the evening of Mar 5 in New York.
	late, err := utc.ResolveDay(time.Date(2018, 3, 6, 2, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}

	r := NewResolver(store, ny)
	mar5, err := r.ResolveDay(time.Date(2018, 3, 5, 12, 0, 0, 0, ny))
	if err != nil {
		t.Fatalf("ResolveDay(Mar 5) failed: %v", err)
	}
	if mar5.ID != late.ID {
		t.Errorf("Mar 5 should resolve to the log dated on it, got %s", mar5.ID)
	}

	mar6, err := r.ResolveDay(time.Date(2018, 3, 6, 12, 0, 0, 0, ny))
	if err != nil {
		t.Fatalf("ResolveDay(Mar 6) failed: %v", err)
	}
	if mar6.ID == late.ID {
		t.Fatal("Mar 6 resolved to a log dated on Mar 5")
	}
	if mar6.DayKey != "2018-03-06" {
		t.Errorf("expected day key 2018-03-06, got %s", mar6.DayKey)
	}

	again, _ := r.ResolveDay(time.Date(2018, 3, 5, 23, 0, 0, 0, ny))
	if again.ID != late.ID {
		t.Errorf("Mar 5 changed logs after Mar 6 was created: %s", again.ID)
	}
	if again.DayKey != "2018-03-05" {
		t.Errorf("expected the old log to be rekeyed to 2018-03-05, got %s", again.DayKey)
	}
}

func TestResolveDayRekeyFallsBackToID(t *testing.T) {
	utc, store := setupResolver(t, "UTC")
	ny, _ := time.LoadLocation("America/New_York")

	// Both UTC logs fall on Mar 5 in New York.
	first, _ := utc.ResolveDay(time.Date(2018, 3, 5, 12, 0, 0, 0, time.UTC))
	second, _ := utc.ResolveDay(time.Date(2018, 3, 6, 2, 0, 0, 0, time.UTC))
	if first.ID == second.ID {
		t.Fatal("UTC days shared a log")
	}

	r := NewResolver(store, ny)
	mar6, err := r.ResolveDay(time.Date(2018, 3, 6, 12, 0, 0, 0, ny))
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}
	if mar6.ID == first.ID || mar6.ID == second.ID {
		t.Errorf("Mar 6 resolved to an existing log %s", mar6.ID)
	}

	all, _ := store.GetAllLogs()
	if len(all) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(all))
	}
	for _, l := range all {
		if l.ID == second.ID && l.DayKey != "log:"+second.ID {
			t.Errorf("expected displaced log keyed by id, got %s", l.DayKey)
		}
	}
}

func TestResolveDayInvalid(t *testing.T) {
	r, _ := setupResolver(t, "UTC")
	if _, err := r.ResolveDay(time.Time{}); !errors.Is(err, utils.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestResolveRoutineLog(t *testing.T) {
	r, _ := setupResolver(t, "UTC")
	at := time.Date(2024, 6, 1, 7, 30, 0, 0, time.UTC)

	am, err := r.ResolveRoutineLog(at, "AM")
	if err != nil {
		t.Fatalf("ResolveRoutineLog failed: %v", err)
	}
	if am.ID == "" || len(am.Products) != 0 || !am.Time.Equal(at) {
		t.Errorf("unexpected new routine log %+v", am)
	}
	same, _ := r.ResolveRoutineLog(at.Add(3*time.Hour), "AM")
	if same.ID != am.ID {
		t.Errorf("expected the existing AM log")
	}
	if _, err := r.ResolveRoutineLog(at.Add(12*time.Hour), "PM"); err != nil {
		t.Fatalf("ResolveRoutineLog PM failed: %v", err)
	}

	day, err := r.RoutineLogsForDay(at)
	if err != nil {
		t.Fatalf("RoutineLogsForDay failed: %v", err)
	}
	if len(day) != 2 || day[0].Name != "AM" || day[1].Name != "PM" {
		t.Errorf("expected [AM PM], got %+v", day)
	}
	tomorrow, _ := r.RoutineLogsForDay(at.AddDate(0, 0, 1))
	if len(tomorrow) != 0 {
		t.Errorf("expected no routine logs tomorrow, got %d", len(tomorrow))
	}
}

func TestChangeDay(t *testing.T) {
	r, _ := setupResolver(t, "America/New_York")
	start := time.Date(2018, 3, 10, 12, 0, 0, 0, r.Location())

	next, err := r.ChangeDay(start, 1)
	if err != nil {
		t.Fatalf("ChangeDay failed: %v", err)
	}
	// Crosses the DST change and keeps the wall clock.
	if next.Day() != 11 || next.Hour() != 12 {
		t.Errorf("expected 2018-03-11 12:00, got %v", next)
	}

	edge := time.Date(9999, 12, 31, 12, 0, 0, 0, r.Location())
	got, err := r.ChangeDay(edge, 1)
	if !errors.Is(err, utils.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if !got.Equal(edge) {
		t.Errorf("expected unchanged date on error, got %v", got)
	}
}

func TestCursor(t *testing.T) {
	r, _ := setupResolver(t, "UTC")
	day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewCursor(day)

	var seen []time.Time
	cancel := c.Observe(func(d time.Time) { seen = append(seen, d) })

	if err := c.Step(r, -1); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if c.Get().Day() != 31 || c.Get().Year() != 2023 {
		t.Errorf("expected 2023-12-31, got %v", c.Get())
	}
	c.Set(c.Get())
	if len(seen) != 1 {
		t.Errorf("expected one notification, got %d", len(seen))
	}

	cancel()
	c.Set(day)
	if len(seen) != 1 {
		t.Errorf("observer called after cancel")
	}
}
