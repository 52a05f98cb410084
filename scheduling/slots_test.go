package scheduling

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateSlots_FullDay(t *testing.T) {
	loc := time.UTC
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, loc) // a Monday
	end := time.Date(2026, 9, 7, 18, 0, 0, 0, loc)

	slots, err := GenerateSlots(start, end, 60*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(slots))
	}
	for i, s := range slots {
		want := start.Add(time.Duration(i) * time.Hour)
		if !s.Equal(want) {
			t.Fatalf("slot %d: expected %s, got %s", i, want.Format(time.RFC3339), s.Format(time.RFC3339))
		}
	}
	// Last slot must still fit before closing time.
	if last := slots[len(slots)-1]; last.Add(time.Hour).After(end) {
		t.Fatalf("last slot %s extends past end %s", last.Format(time.RFC3339), end.Format(time.RFC3339))
	}
}

func TestGenerateSlots_PartialTrailingSlotExcluded(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	end := start.Add(100 * time.Minute)

	slots, err := GenerateSlots(start, end, 45*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10:00 and 10:45 fit; 11:30 would end at 12:15, past 11:40.
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
}

func TestGenerateSlots_InvalidDuration(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	for _, d := range []time.Duration{0, -15 * time.Minute} {
		if _, err := GenerateSlots(start, end, d); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("duration %v: expected ErrInvalidDuration, got %v", d, err)
		}
	}
}

func TestGenerateSlots_EmptyInterval(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(start, start, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots for empty interval, got %d", len(slots))
	}

	slots, err = GenerateSlots(start, start.Add(-time.Hour), 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots for inverted interval, got %d", len(slots))
	}
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	start := time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	first, err := GenerateSlots(start, end, 25*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GenerateSlots(start, end, 25*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("slot %d differs between runs", i)
		}
	}
}

func TestFilterAvailable_ExcludesBookedInstant(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	slots, err := GenerateSlots(start, start.Add(8*time.Hour), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	booked := []time.Time{time.Date(2026, 9, 7, 13, 0, 0, 0, time.UTC)}
	available := FilterAvailable(slots, booked)
	if len(available) != 7 {
		t.Fatalf("expected 7 available slots, got %d", len(available))
	}
	for _, s := range available {
		if s.Equal(booked[0]) {
			t.Fatalf("booked slot %s still present", s.Format(time.RFC3339))
		}
	}
	// Order is preserved.
	for i := 1; i < len(available); i++ {
		if !available[i-1].Before(available[i]) {
			t.Fatalf("available slots out of order at %d", i)
		}
	}
}

func TestFilterAvailable_NoBookings(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	slots, _ := GenerateSlots(start, start.Add(2*time.Hour), time.Hour)

	available := FilterAvailable(slots, nil)
	if len(available) != len(slots) {
		t.Fatalf("expected all %d slots, got %d", len(slots), len(available))
	}
}

func TestOnGrid(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	slots, _ := GenerateSlots(start, start.Add(3*time.Hour), time.Hour)

	if !OnGrid(slots, start.Add(2*time.Hour)) {
		t.Fatal("expected 12:00 to be on the grid")
	}
	if OnGrid(slots, start.Add(90*time.Minute)) {
		t.Fatal("11:30 is off-grid and must not match")
	}
}
