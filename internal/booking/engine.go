package booking

import (
	"context"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// UserFinder resolves users by id.  Implementations return ErrUserNotFound
// when no such user exists.
type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RoomFinder resolves rooms by id.  Implementations return ErrRoomNotFound
// when no such room exists.
type RoomFinder interface {
	GetByID(ctx context.Context, id uint64) (model.Room, error)
}

// Store is the transactional persistence boundary for bookings.  The
// availability check and the insert in CreateConfirmed must be atomic with
// respect to other concurrent booking attempts on the same room: two
// overlapping requests racing each other must yield exactly one confirmed
// booking and one ErrRoomUnavailable.
type Store interface {
	// CreateConfirmed verifies that no confirmed booking overlaps the
	// requested range and inserts the booking, all in one transaction.
	// It populates the generated ID and timestamps on b, and returns
	// ErrRoomUnavailable when an overlap exists or ErrRoomNotFound when
	// the room row is gone.
	CreateConfirmed(ctx context.Context, b *model.Booking) error
	// GetByID loads a booking or returns ErrBookingNotFound.
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	// FindConfirmedByRoom returns the confirmed bookings of a room.
	FindConfirmedByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error)
	// MarkCancelled atomically sets status=CANCELLED and the given refund
	// status on a booking and returns the updated record.
	MarkCancelled(ctx context.Context, id uint64, rs model.RefundStatus) (model.Booking, error)
}

// RefundResult is the gateway's answer to a refund request.
type RefundResult struct {
	Status   string // "COMPLETED" on success, anything else is a failure
	RefundID string // gateway-assigned refund identifier, may be empty
}

// RefundCompleted reports whether the gateway confirmed the refund.
func (r RefundResult) RefundCompleted() bool { return r.Status == string(model.RefundCompleted) }

// PaymentGateway is the external payment collaborator used to compensate a
// captured payment when a booking is cancelled.
type PaymentGateway interface {
	Refund(ctx context.Context, captureRef string, amount float64) (RefundResult, error)
}

// CreateRequest is the strongly-typed input for CreateBooking, validated at
// the HTTP boundary before it reaches the engine.  Identity is explicit: the
// engine never reads ambient authentication state.
type CreateRequest struct {
	UserID     uint64
	RoomID     uint64
	CheckIn    time.Time
	CheckOut   time.Time
	CaptureRef string  // payment capture id, empty when the stay is unpaid
	Amount     float64 // amount captured for the stay
}

// Engine owns the booking lifecycle.  It enforces non-overlap on confirmed
// bookings per room and orchestrates the compensating refund on
// cancellation.
type Engine struct {
	users         UserFinder
	rooms         RoomFinder
	store         Store
	gateway       PaymentGateway
	refundTimeout time.Duration
}

// NewEngine constructs an Engine.  All dependencies must be non-nil.
func NewEngine(users UserFinder, rooms RoomFinder, store Store, gateway PaymentGateway) *Engine {
	if users == nil || rooms == nil || store == nil || gateway == nil {
		panic("nil dependency passed to NewEngine")
	}
	return &Engine{
		users:         users,
		rooms:         rooms,
		store:         store,
		gateway:       gateway,
		refundTimeout: 15 * time.Second,
	}
}

// CreateBooking validates the request, resolves its collaborators and
// commits a confirmed booking if and only if the room is free for the whole
// range.  The conflict check and the insert run atomically inside the store.
func (e *Engine) CreateBooking(ctx context.Context, req CreateRequest) (model.Booking, error) {
	if !req.CheckIn.Before(req.CheckOut) {
		return model.Booking{}, ErrInvalidRange
	}
	if _, err := e.users.GetByID(ctx, req.UserID); err != nil {
		return model.Booking{}, err
	}
	if _, err := e.rooms.GetByID(ctx, req.RoomID); err != nil {
		return model.Booking{}, err
	}

	b := model.Booking{
		UserID:       req.UserID,
		RoomID:       req.RoomID,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Status:       model.BookingConfirmed,
		RefundStatus: InitialRefundStatus(req.CaptureRef),
		Amount:       req.Amount,
	}
	if req.CaptureRef != "" {
		ref := req.CaptureRef
		b.CaptureRef = &ref
	}
	if err := e.store.CreateConfirmed(ctx, &b); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// CancelBooking cancels a booking and drives the compensating refund.
// Cancellation is idempotent: calling it on an already-cancelled booking is
// a no-op that returns the current state, and a refund is issued at most
// once per booking.  The reservation is released unconditionally: a failed
// refund is recorded as refundStatus=FAILED and never surfaced as an error,
// so the room is never kept held.  The gateway call runs before any row lock
// is taken so a slow network call cannot serialize unrelated bookings.
func (e *Engine) CancelBooking(ctx context.Context, bookingID uint64) (model.Booking, error) {
	b, err := e.store.GetByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}

	switch Reconcile(b) {
	case DecisionAlreadyCancelled:
		return b, nil
	case DecisionSkipRefund:
		// Refund already completed, possibly out of band; never hit the
		// gateway a second time.
		return e.store.MarkCancelled(ctx, b.ID, b.RefundStatus)
	case DecisionNoRefund:
		return e.store.MarkCancelled(ctx, b.ID, model.RefundNotApplicable)
	}

	rs := model.RefundFailed
	rctx, cancel := context.WithTimeout(ctx, e.refundTimeout)
	defer cancel()
	if res, err := e.gateway.Refund(rctx, *b.CaptureRef, b.Amount); err == nil && res.RefundCompleted() {
		rs = model.RefundCompleted
	}
	return e.store.MarkCancelled(ctx, b.ID, rs)
}

// IsRoomAvailable answers whether the room is free for [checkIn, checkOut).
// It is a point-in-time answer with no reservation hold: callers using it
// as a pre-flight check before capturing payment must still expect
// CreateBooking to re-check at commit time.
func (e *Engine) IsRoomAvailable(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	if !checkIn.Before(checkOut) {
		return false, ErrInvalidRange
	}
	confirmed, err := e.store.FindConfirmedByRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return !NewIndex(confirmed).Conflicts(checkIn, checkOut), nil
}
