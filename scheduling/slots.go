// Package scheduling holds the pure slot math: turning a working interval
// into a grid of bookable start times and filtering out occupied ones.
package scheduling

import (
	"errors"
	"time"
)

var ErrInvalidDuration = errors.New("slot duration must be positive")

// GenerateSlots returns the ordered start times of fixed-width,
// back-to-back slots inside [start, end]. The first slot begins at start
// and a slot is included only if it ends on or before end. end <= start
// yields an empty grid, not an error.
func GenerateSlots(start, end time.Time, duration time.Duration) ([]time.Time, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	var slots []time.Time
	for t := start; !t.Add(duration).After(end); t = t.Add(duration) {
		slots = append(slots, t)
	}
	return slots, nil
}

// FilterAvailable removes candidate slots whose start time exactly matches
// a booked instant. Slots and bookings share the same fixed grid, so
// exact-instant equality is the collision rule. Input order is preserved.
func FilterAvailable(slots []time.Time, booked []time.Time) []time.Time {
	if len(booked) == 0 {
		return slots
	}

	occupied := make(map[int64]bool, len(booked))
	for _, b := range booked {
		occupied[b.Unix()] = true
	}

	available := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		if !occupied[s.Unix()] {
			available = append(available, s)
		}
	}
	return available
}

// OnGrid reports whether instant is one of the generated slot starts.
func OnGrid(slots []time.Time, instant time.Time) bool {
	for _, s := range slots {
		if s.Equal(instant) {
			return true
		}
	}
	return false
}
