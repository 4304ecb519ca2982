package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/skinlog/internal/constants"
)

// ErrInvalidDate is returned when day boundaries cannot be computed for a date.
var ErrInvalidDate = errors.New("invalid date")

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	// Return the date at midnight in the specified timezone
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// AtTimeOfDay moves t to the given HH:MM on the same calendar day in t's location.
func AtTimeOfDay(t time.Time, timeStr string) (time.Time, error) {
	timeOfDay, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), timeOfDay.Hour(), timeOfDay.Minute(), 0, 0, t.Location()), nil
}

// DayBounds returns the inclusive [00:00:00, 23:59:59] range of the
// calendar day containing date, evaluated in loc.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if date.IsZero() {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.Local
	}
	d := date.In(loc)
	if d.Year() < 1 || d.Year() > 9999 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: year %d out of range", ErrInvalidDate, d.Year())
	}

	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, d.Format(constants.DateFormat))
	}
	return start, end, nil
}

// InRange reports whether t lies within the inclusive range, at second precision.
func InRange(t, start, end time.Time) bool {
	s := t.Unix()
	return s >= start.Unix() && s <= end.Unix()
}

// AddDays moves date by n calendar days in loc, keeping the wall clock time.
func AddDays(date time.Time, n int, loc *time.Location) (time.Time, error) {
	if date.IsZero() {
		return time.Time{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.Local
	}
	d := date.In(loc).AddDate(0, 0, n)
	if d.Year() < 1 || d.Year() > 9999 {
		return time.Time{}, fmt.Errorf("%w: year %d out of range", ErrInvalidDate, d.Year())
	}
	return d, nil
}

// DayKey returns the YYYY-MM-DD key of date in loc.
func DayKey(date time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return date.In(loc).Format(constants.DateFormat)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
