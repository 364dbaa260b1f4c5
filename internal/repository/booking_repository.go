package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
)

// BookingRepo implements booking.Store over MySQL.  The availability check
// and the insert in CreateConfirmed run inside a single transaction that
// locks the room row, so two concurrent overlapping requests on the same
// room serialize and exactly one of them commits.  All date columns are
// DATE values stored in UTC.
type BookingRepo struct{ DB *sql.DB }

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = "id, user_id, room_id, check_in, check_out, status, capture_ref, refund_status, amount, created_at, updated_at"

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var (
		b          model.Booking
		captureRef sql.NullString
	)
	err := row.Scan(&b.ID, &b.UserID, &b.RoomID, &b.CheckIn, &b.CheckOut,
		&b.Status, &captureRef, &b.RefundStatus, &b.Amount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if captureRef.Valid {
		ref := captureRef.String
		b.CaptureRef = &ref
	}
	return b, nil
}

// CreateConfirmed atomically verifies the room is free for [CheckIn,
// CheckOut) and inserts the booking as CONFIRMED.  The room row is locked
// with SELECT ... FOR UPDATE first, which serializes concurrent attempts on
// the same room without blocking bookings for other rooms.  It populates
// the generated ID and timestamps on b.  Returns booking.ErrRoomNotFound
// when the room is gone and booking.ErrRoomUnavailable on overlap.
func (r *BookingRepo) CreateConfirmed(ctx context.Context, b *model.Booking) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the room row so the conflict check below sees a consistent
	// snapshot relative to any concurrent insert for the same room.
	var roomID uint64
	err = tx.QueryRowContext(ctx, "SELECT id FROM rooms WHERE id=? FOR UPDATE", b.RoomID).Scan(&roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrRoomNotFound
	}
	if err != nil {
		return err
	}

	existing, err := r.findConfirmedByRoomTx(ctx, tx, b.RoomID)
	if err != nil {
		return err
	}
	if booking.NewIndex(existing).Conflicts(b.CheckIn, b.CheckOut) {
		return booking.ErrRoomUnavailable
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, room_id, check_in, check_out, status, capture_ref, refund_status, amount)
		 VALUES (?,?,?,?,?,?,?,?)`,
		b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.Status, b.CaptureRef, b.RefundStatus, b.Amount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	// Query back the full row to populate timestamps and defaults.
	row := tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=?", b.ID)
	got, err := scanBooking(row)
	if err != nil {
		return err
	}
	*b = got

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a booking by id, returning booking.ErrBookingNotFound when
// no such booking exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=? LIMIT 1", id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, booking.ErrBookingNotFound
	}
	return b, err
}

// FindConfirmedByRoom returns the confirmed bookings of a room ordered by
// check-in date.  The reservation engine builds its interval index from
// this list.
func (r *BookingRepo) FindConfirmedByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE room_id=? AND status=? ORDER BY check_in",
		roomID, model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *BookingRepo) findConfirmedByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Booking, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE room_id=? AND status=? ORDER BY check_in",
		roomID, model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// MarkCancelled atomically flips a booking to CANCELLED with the given
// refund status.  The booking row is locked for the duration of the
// read-modify-write; the payment-gateway call has already happened by the
// time this runs, so no external latency is held under the lock.
func (r *BookingRepo) MarkCancelled(ctx context.Context, id uint64, rs model.RefundStatus) (model.Booking, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=? FOR UPDATE", id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, booking.ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}

	// A concurrent cancel may have won the race; keep the stored outcome.
	if b.Status == model.BookingCancelled {
		if err := tx.Commit(); err != nil {
			return model.Booking{}, err
		}
		committed = true
		return b, nil
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status=?, refund_status=? WHERE id=?",
		model.BookingCancelled, rs, id); err != nil {
		return model.Booking{}, err
	}

	row = tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=?", id)
	b, err = scanBooking(row)
	if err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	committed = true
	return b, nil
}

// ListByUser returns all bookings of a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
