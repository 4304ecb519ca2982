package utils

import (
	"errors"
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{
			name:     "empty string returns local",
			timezone: "",
			wantErr:  false,
		},
		{
			name:     "Local returns local",
			timezone: "Local",
			wantErr:  false,
		},
		{
			name:     "valid timezone UTC",
			timezone: "UTC",
			wantErr:  false,
		},
		{
			name:     "valid timezone America/New_York",
			timezone: "America/New_York",
			wantErr:  false,
		},
		{
			name:     "invalid timezone",
			timezone: "Invalid/Timezone",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	date := time.Date(2018, 3, 6, 14, 30, 0, 0, loc)
	start, end, err := DayBounds(date, loc)
	if err != nil {
		t.Fatalf("DayBounds() error = %v", err)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"midnight of day", time.Date(2018, 3, 6, 0, 0, 0, 0, loc), true},
		{"last second of day", time.Date(2018, 3, 6, 23, 59, 59, 0, loc), true},
		{"noon", time.Date(2018, 3, 6, 12, 0, 0, 0, loc), true},
		{"last second of previous day", time.Date(2018, 3, 5, 23, 59, 59, 0, loc), false},
		{"midnight of next day", time.Date(2018, 3, 7, 0, 0, 0, 0, loc), false},
		{"same instant in UTC", time.Date(2018, 3, 6, 5, 0, 0, 0, time.UTC), true},
		{"UTC midnight is previous local day", time.Date(2018, 3, 6, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InRange(tt.at, start, end); got != tt.want {
				t.Errorf("InRange(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestDayBoundsInvalid(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
	}{
		{"zero time", time.Time{}},
		{"year after 9999", time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DayBounds(tt.date, time.UTC)
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("DayBounds() error = %v, want ErrInvalidDate", err)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	base := time.Date(2018, 3, 6, 9, 0, 0, 0, time.UTC)

	next, err := AddDays(base, 1, time.UTC)
	if err != nil {
		t.Fatalf("AddDays() error = %v", err)
	}
	if DayKey(next, time.UTC) != "2018-03-07" {
		t.Errorf("expected 2018-03-07, got %s", DayKey(next, time.UTC))
	}

	prev, err := AddDays(base, -6, time.UTC)
	if err != nil {
		t.Fatalf("AddDays() error = %v", err)
	}
	if DayKey(prev, time.UTC) != "2018-02-28" {
		t.Errorf("expected 2018-02-28, got %s", DayKey(prev, time.UTC))
	}

	edge := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if _, err := AddDays(edge, 1, time.UTC); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("AddDays() past year 9999 error = %v, want ErrInvalidDate", err)
	}
}

func TestValidateTimezone(t *testing.T) {
	if !ValidateTimezone("") || !ValidateTimezone("Local") || !ValidateTimezone("UTC") {
		t.Error("expected empty, Local and UTC to be valid")
	}
	if ValidateTimezone("Mars/Olympus") {
		t.Error("expected Mars/Olympus to be invalid")
	}
}
