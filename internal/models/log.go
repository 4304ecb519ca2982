package models

import "time"

// Log aggregates the applications recorded on one calendar day.
type Log struct {
	ID           string        `json:"id" yaml:"id"`
	Date         time.Time     `json:"date" yaml:"date"`
	DayKey       string        `json:"day_key" yaml:"dayKey"` // YYYY-MM-DD in the resolving location
	Applications []Application `json:"applications" yaml:"applications"`
}

// Application records a routine performed at a point in time.
type Application struct {
	ID        string    `json:"id" yaml:"id"`
	LogID     string    `json:"log_id" yaml:"-"`
	Notes     string    `json:"notes" yaml:"notes"`
	Time      time.Time `json:"time" yaml:"time"`
	RoutineID *string   `json:"routine_id,omitempty" yaml:"routineId,omitempty"`
}
