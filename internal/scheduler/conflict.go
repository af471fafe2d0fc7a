package scheduler

import "time"

// Booking represents a reservation interval in the room-booking domain.
type Booking struct {
	ID     string
	RoomID string
	Start  time.Time
	End    time.Time
}

// Conflict details an overlapping booking relation that callers can present to users.
type Conflict struct {
	WithBookingID string
	RoomID        string
	Start         time.Time
	End           time.Time
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that merely share an endpoint do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DetectConflicts identifies room conflicts for the candidate booking against
// existing ones. A booking never conflicts with itself, and bookings in other
// rooms are ignored.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	var conflicts []Conflict

	for _, booking := range existing {
		if booking.ID != "" && booking.ID == candidate.ID {
			continue
		}
		if booking.RoomID != candidate.RoomID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, booking.Start, booking.End) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithBookingID: booking.ID,
			RoomID:        booking.RoomID,
			Start:         booking.Start,
			End:           booking.End,
		})
	}

	return conflicts
}
