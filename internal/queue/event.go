// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully
// committed.  It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64  `json:"booking_id"`
	UserID      uint64  `json:"user_id"`
	RoomID      uint64  `json:"room_id"`
	RoomName    string  `json:"room_name"`
	CheckIn     string  `json:"check_in"`
	CheckOut    string  `json:"check_out"`
	Amount      float64 `json:"amount"`
	CaptureRef  string  `json:"capture_ref,omitempty"`
	ConfirmedAt string  `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.  The
// refund status lets consumers reconcile money separately from the
// reservation itself: a FAILED refund is a recorded fact that downstream
// tooling may act on, since the engine never retries it.
type BookingCancelledEvent struct {
	BookingID    uint64  `json:"booking_id"`
	UserID       uint64  `json:"user_id"`
	RoomID       uint64  `json:"room_id"`
	Amount       float64 `json:"amount"`
	RefundStatus string  `json:"refund_status"`
	CancelledAt  string  `json:"cancelled_at"`
}
