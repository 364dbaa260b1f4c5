package booking

import (
	"sort"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// Overlaps reports whether the half-open date ranges [aIn, aOut) and
// [bIn, bOut) share at least one night.  Ranges that touch at a boundary,
// e.g. one stay checks out the day another checks in, do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}

// Index is a room-scoped interval index over confirmed bookings.  Spans are
// kept sorted by check-in with a running maximum of check-out dates, which
// lets Conflicts answer overlap queries in O(log n) instead of scanning the
// whole slice.  An Index is immutable after construction; build a fresh one
// per availability check.
type Index struct {
	starts []time.Time
	maxOut []time.Time // maxOut[i] = max check-out over spans[0..i]
}

// NewIndex builds an Index from the given bookings.  Bookings that are not
// CONFIRMED are ignored so a cancelled stay never blocks a room.
func NewIndex(bookings []model.Booking) *Index {
	spans := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == model.BookingConfirmed {
			spans = append(spans, b)
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].CheckIn.Before(spans[j].CheckIn) })

	ix := &Index{
		starts: make([]time.Time, len(spans)),
		maxOut: make([]time.Time, len(spans)),
	}
	for i, s := range spans {
		ix.starts[i] = s.CheckIn
		ix.maxOut[i] = s.CheckOut
		if i > 0 && ix.maxOut[i-1].After(s.CheckOut) {
			ix.maxOut[i] = ix.maxOut[i-1]
		}
	}
	return ix
}

// Conflicts reports whether any indexed booking overlaps [in, out).  Only
// spans that start before `out` can conflict; among those, a conflict exists
// iff the largest check-out date is after `in`.
func (ix *Index) Conflicts(in, out time.Time) bool {
	// First span with start >= out; everything before it starts early enough.
	n := sort.Search(len(ix.starts), func(i int) bool { return !ix.starts[i].Before(out) })
	if n == 0 {
		return false
	}
	return ix.maxOut[n-1].After(in)
}

// HasConflict is a convenience wrapper used where building an Index is not
// worth it: it evaluates the overlap predicate over a plain slice.
func HasConflict(bookings []model.Booking, in, out time.Time) bool {
	for _, b := range bookings {
		if b.Status != model.BookingConfirmed {
			continue
		}
		if Overlaps(in, out, b.CheckIn, b.CheckOut) {
			return true
		}
	}
	return false
}
