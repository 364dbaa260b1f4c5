// Package repository provides data access over *sql.DB for users, rooms,
// bookings and refresh tokens.  Absence of a domain entity is reported with
// the sentinel errors defined in the booking package so that handlers and
// the reservation engine branch on the same values; sentinels defined here
// cover repository-only failure scenarios.
package repository

import "errors"

// ErrEmailExists is returned when registering a user whose email address
// is already taken.  Handlers should translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
