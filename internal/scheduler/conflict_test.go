package scheduler

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.June, 2, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical intervals overlap", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"nested interval overlaps", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"partial overlap at tail", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"partial overlap at head", at(10, 30), at(11, 30), at(10, 0), at(11, 0), true},
		{"adjacent intervals sharing an endpoint do not overlap", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"adjacent intervals the other way do not overlap", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"strictly disjoint intervals do not overlap", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("Overlaps(%v, %v, %v, %v) = %v, want %v", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
			// The predicate must agree with a0 < b1 && b0 < a1.
			expected := tc.aStart.Before(tc.bEnd) && tc.bStart.Before(tc.aEnd)
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != expected {
				t.Fatalf("predicate disagrees with definition for %s", tc.name)
			}
		})
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Run("room overlap produces conflict", func(t *testing.T) {
		existing := []Booking{
			{ID: "b1", RoomID: "room-1", Start: at(10, 0), End: at(11, 0)},
		}
		candidate := Booking{ID: "b2", RoomID: "room-1", Start: at(10, 30), End: at(11, 30)}

		conflicts := DetectConflicts(existing, candidate)
		if len(conflicts) != 1 {
			t.Fatalf("expected one conflict, got %d", len(conflicts))
		}
		if conflicts[0].WithBookingID != "b1" {
			t.Fatalf("expected conflict with b1, got %q", conflicts[0].WithBookingID)
		}
		if conflicts[0].RoomID != "room-1" {
			t.Fatalf("expected conflict room room-1, got %q", conflicts[0].RoomID)
		}
	})

	t.Run("different rooms never conflict", func(t *testing.T) {
		existing := []Booking{
			{ID: "b1", RoomID: "room-1", Start: at(10, 0), End: at(11, 0)},
		}
		candidate := Booking{ID: "b2", RoomID: "room-2", Start: at(10, 0), End: at(11, 0)}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %v", conflicts)
		}
	})

	t.Run("candidate is excluded from comparison with itself", func(t *testing.T) {
		existing := []Booking{
			{ID: "b1", RoomID: "room-1", Start: at(10, 0), End: at(11, 0)},
		}
		candidate := Booking{ID: "b1", RoomID: "room-1", Start: at(10, 0), End: at(12, 0)}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected self comparison to be skipped, got %v", conflicts)
		}
	})

	t.Run("non-overlapping bookings yield no conflicts", func(t *testing.T) {
		existing := []Booking{
			{ID: "b1", RoomID: "room-1", Start: at(9, 0), End: at(10, 0)},
			{ID: "b2", RoomID: "room-1", Start: at(11, 0), End: at(12, 0)},
		}
		candidate := Booking{ID: "b3", RoomID: "room-1", Start: at(10, 0), End: at(11, 0)}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected adjacency to be conflict free, got %v", conflicts)
		}
	})

	t.Run("multiple overlaps are all reported", func(t *testing.T) {
		existing := []Booking{
			{ID: "b1", RoomID: "room-1", Start: at(9, 0), End: at(10, 30)},
			{ID: "b2", RoomID: "room-1", Start: at(10, 45), End: at(12, 0)},
			{ID: "b3", RoomID: "room-2", Start: at(10, 0), End: at(11, 0)},
		}
		candidate := Booking{ID: "b4", RoomID: "room-1", Start: at(10, 0), End: at(11, 0)}

		conflicts := DetectConflicts(existing, candidate)
		if len(conflicts) != 2 {
			t.Fatalf("expected two conflicts, got %d: %v", len(conflicts), conflicts)
		}
	})
}
