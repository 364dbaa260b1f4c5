package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  A
// booking is only ever persisted once it is confirmed; there is no
// stored pending state before the conflict check passes.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// RefundStatus tracks the outcome of the compensating refund issued
// when a booking is cancelled.  It starts at PENDING when a payment
// capture backs the booking and NOT_APPLICABLE otherwise, and moves
// to COMPLETED or FAILED at most once.
type RefundStatus string

const (
	RefundPending       RefundStatus = "PENDING"
	RefundNotApplicable RefundStatus = "NOT_APPLICABLE"
	RefundCompleted     RefundStatus = "COMPLETED"
	RefundFailed        RefundStatus = "FAILED"
)

// Booking represents one reservation of a room for a date range as
// stored in the `bookings` table.  CheckIn and CheckOut are calendar
// dates interpreted as a half-open interval [CheckIn, CheckOut): two
// stays that touch at a boundary do not conflict.
//
// Fields:
//  ID           – primary key identifier, immutable once assigned.
//  UserID       – user who made the booking.
//  RoomID       – room being booked.
//  CheckIn      – arrival date; must precede CheckOut.
//  CheckOut     – departure date.
//  Status       – CONFIRMED or CANCELLED.
//  CaptureRef   – external payment-capture identifier, when payment
//                 preceded the booking (nullable).
//  RefundStatus – refund outcome, see RefundStatus.
//  Amount       – amount paid for the stay, immutable once set.
type Booking struct {
	ID           uint64        `json:"id"`            // bookings.id
	UserID       uint64        `json:"user_id"`       // bookings.user_id
	RoomID       uint64        `json:"room_id"`       // bookings.room_id
	CheckIn      time.Time     `json:"check_in"`      // bookings.check_in (DATE)
	CheckOut     time.Time     `json:"check_out"`     // bookings.check_out (DATE)
	Status       BookingStatus `json:"status"`        // bookings.status
	CaptureRef   *string       `json:"capture_ref"`   // bookings.capture_ref (nullable)
	RefundStatus RefundStatus  `json:"refund_status"` // bookings.refund_status
	Amount       float64       `json:"amount"`        // bookings.amount
	CreatedAt    time.Time     `json:"created_at"`    // bookings.created_at
	UpdatedAt    time.Time     `json:"updated_at"`    // bookings.updated_at
}
