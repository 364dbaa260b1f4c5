package booking

import (
	"testing"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

func day(n int) time.Time {
	return time.Date(2026, time.March, n, 0, 0, 0, 0, time.UTC)
}

func confirmed(in, out int) model.Booking {
	return model.Booking{CheckIn: day(in), CheckOut: day(out), Status: model.BookingConfirmed}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                   string
		aIn, aOut, bIn, bOut   int
		want                   bool
	}{
		{"identical", 1, 5, 1, 5, true},
		{"partial overlap", 1, 5, 3, 8, true},
		{"contained", 1, 10, 3, 5, true},
		{"touching at boundary", 1, 5, 5, 8, false},
		{"touching at boundary reversed", 5, 8, 1, 5, false},
		{"disjoint", 1, 3, 6, 9, false},
		{"one night shared", 1, 5, 4, 6, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(day(tc.aIn), day(tc.aOut), day(tc.bIn), day(tc.bOut))
			if got != tc.want {
				t.Errorf("Overlaps([%d,%d),[%d,%d)) = %v, want %v",
					tc.aIn, tc.aOut, tc.bIn, tc.bOut, got, tc.want)
			}
		})
	}
}

func TestIndexConflicts(t *testing.T) {
	bookings := []model.Booking{
		confirmed(1, 4),
		confirmed(10, 15),
		// Long stay that starts early and outlasts later check-ins; the
		// running maximum must carry its check-out forward.
		confirmed(2, 20),
	}
	ix := NewIndex(bookings)

	if !ix.Conflicts(day(16), day(18)) {
		t.Error("range inside the long stay should conflict")
	}
	if !ix.Conflicts(day(3), day(5)) {
		t.Error("range over the first stay should conflict")
	}
	if ix.Conflicts(day(20), day(25)) {
		t.Error("range starting at the latest check-out should not conflict")
	}
	if !ix.Conflicts(day(19), day(21)) {
		t.Error("range overlapping the tail of the long stay should conflict")
	}
}

func TestIndexEmptyAndCancelled(t *testing.T) {
	if NewIndex(nil).Conflicts(day(1), day(2)) {
		t.Error("empty index must never conflict")
	}

	cancelled := confirmed(1, 10)
	cancelled.Status = model.BookingCancelled
	ix := NewIndex([]model.Booking{cancelled})
	if ix.Conflicts(day(2), day(3)) {
		t.Error("cancelled bookings must not block the room")
	}
}

func TestHasConflict(t *testing.T) {
	cancelled := confirmed(1, 10)
	cancelled.Status = model.BookingCancelled
	list := []model.Booking{cancelled, confirmed(12, 14)}

	if HasConflict(list, day(2), day(3)) {
		t.Error("cancelled booking counted as conflict")
	}
	if !HasConflict(list, day(13), day(16)) {
		t.Error("confirmed overlap not detected")
	}
	if HasConflict(list, day(14), day(16)) {
		t.Error("boundary touch counted as conflict")
	}
}
