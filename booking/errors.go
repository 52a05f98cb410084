package booking

import "errors"

var (
	// ErrNotFound covers invalid service, staff, or appointment references.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers malformed durations, dates, and schedules.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSlotUnavailable is the expected outcome of contention: the
	// requested staff/time combination is taken or outside working hours.
	// Clients should re-poll availability and pick another slot.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrForbidden is an ownership or role violation.
	ErrForbidden = errors.New("forbidden")
)
