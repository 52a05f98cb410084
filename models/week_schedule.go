package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WeekSchedule maps a lowercase weekday name ("monday" .. "sunday") to a
// working interval in the form "HH:MM-HH:MM". A missing day means the staff
// member is closed that day.
type WeekSchedule map[string]string

// Value implements the driver.Valuer interface
func (w WeekSchedule) Value() (driver.Value, error) {
	jsonData, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil // Return as string for JSONB type
}

// Scan implements the sql.Scanner interface
func (w *WeekSchedule) Scan(value interface{}) error {
	if value == nil {
		*w = WeekSchedule{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal WeekSchedule: unsupported type %T", value)
	}

	return json.Unmarshal(data, w)
}

// DayName returns the canonical lowercase weekday name for a date. It is
// derived from time.Weekday, never from locale formatting, so the same date
// always resolves to the same key.
func DayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// ResolveInterval resolves the schedule for the calendar day of date into
// absolute start and end instants in loc. A missing or malformed entry
// (bad "HH:MM-HH:MM" syntax, or start >= end) means closed, not an error.
func (w WeekSchedule) ResolveInterval(date time.Time, loc *time.Location) (start, end time.Time, open bool) {
	day := date.In(loc)

	entry, ok := w[DayName(day)]
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	from, to, ok := strings.Cut(entry, "-")
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	startClock, err := time.Parse("15:04", strings.TrimSpace(from))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endClock, err := time.Parse("15:04", strings.TrimSpace(to))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	start = time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, loc)
	end = time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, loc)

	if !start.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
