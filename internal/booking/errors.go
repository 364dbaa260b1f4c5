// Package booking implements the reservation engine: it decides whether a
// room is free for a requested date range, commits a booking only when no
// conflicting confirmed booking exists, and drives the compensating refund
// when a booking is cancelled.  Failure kinds are exposed as sentinel error
// values so that callers can branch with errors.Is instead of relying on
// panics or string matching.
package booking

import "errors"

// ErrInvalidRange is returned when a requested range does not satisfy
// checkIn < checkOut.  Handlers should translate this into HTTP 400.
var ErrInvalidRange = errors.New("check-in date must be before check-out date")

// ErrUserNotFound is returned when the booking user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrRoomNotFound is returned when the target room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when no booking exists for the given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrRoomUnavailable is returned when a confirmed booking already overlaps
// the requested range.  Handlers should translate this into HTTP 409 so a
// client can distinguish "dates taken" from "room doesn't exist".
var ErrRoomUnavailable = errors.New("room already booked for selected dates")
