package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/room-reservation/internal/service"
)

// BookingHandler exposes the reservation endpoints.  All booking semantics
// live in the engine; the handler only parses, authorizes and maps errors.
type BookingHandler struct {
	Engine   *booking.Engine
	Bookings *repository.BookingRepo
	Rooms    *repository.RoomRepo
}

func NewBookingHandler(e *booking.Engine, b *repository.BookingRepo, r *repository.RoomRepo) *BookingHandler {
	return &BookingHandler{Engine: e, Bookings: b, Rooms: r}
}

type createBookingReq struct {
	RoomID     uint64  `json:"room_id"`
	CheckIn    string  `json:"check_in"`  // YYYY-MM-DD
	CheckOut   string  `json:"check_out"` // YYYY-MM-DD
	CaptureRef string  `json:"capture_ref"`
	Amount     float64 `json:"amount"`
}

type datePair struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// CreateBooking books a room for the authenticated user.  Overlap with an
// existing confirmed booking yields 409; the winner of a race is decided
// inside the store transaction, never here.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in, err := parseDate(req.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in"})
	}
	out, err := parseDate(req.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out"})
	}
	if req.Amount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Engine.CreateBooking(ctx, booking.CreateRequest{
		UserID:     userID,
		RoomID:     req.RoomID,
		CheckIn:    in,
		CheckOut:   out,
		CaptureRef: req.CaptureRef,
		Amount:     req.Amount,
	})
	if err != nil {
		return bookingError(c, err)
	}

	h.publishConfirmed(ctx, b)
	return c.JSON(http.StatusCreated, b)
}

// CancelBooking cancels a booking the caller owns (owners may cancel any).
// Repeated cancels return the stored state with 200.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	existing, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	if existing.UserID != userID && currentRole(c) != "OWNER" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	wasCancelled := existing.Status == model.BookingCancelled

	b, err := h.Engine.CancelBooking(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}

	if !wasCancelled {
		h.publishCancelled(ctx, b)
	}
	return c.JSON(http.StatusOK, b)
}

// GetBooking returns one booking.  Customers only see their own.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	if b.UserID != userID && currentRole(c) != "OWNER" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	return c.JSON(http.StatusOK, b)
}

// MyBookings lists the authenticated user's bookings, newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// BookedDates returns the confirmed date ranges of a room so clients can
// grey out a calendar.  Cancelled bookings never appear here.
func (h *BookingHandler) BookedDates(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, roomID); err != nil {
		return bookingError(c, err)
	}
	list, err := h.Bookings.FindConfirmedByRoom(ctx, roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	out := make([]datePair, 0, len(list))
	for _, b := range list {
		out = append(out, datePair{
			CheckIn:  b.CheckIn.Format(dateLayout),
			CheckOut: b.CheckOut.Format(dateLayout),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Availability answers whether a room is free for ?check_in=&check_out=.
// The answer is advisory; CreateBooking re-checks at commit time.
func (h *BookingHandler) Availability(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	in, err := parseDate(c.QueryParam("check_in"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in"})
	}
	out, err := parseDate(c.QueryParam("check_out"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, roomID); err != nil {
		return bookingError(c, err)
	}
	free, err := h.Engine.IsRoomAvailable(ctx, roomID, in, out)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": free})
}

// bookingError maps engine and store sentinels onto HTTP statuses.
func bookingError(c echo.Context, err error) error {
	switch err {
	case booking.ErrInvalidRange:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be before check_out"})
	case booking.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case booking.ErrRoomNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case booking.ErrBookingNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case booking.ErrRoomUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"error": "room unavailable for the selected dates"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// publishConfirmed sends the booking.confirmed event.  Publish failures are
// logged inside the publisher and deliberately not surfaced: the booking is
// already committed.
func (h *BookingHandler) publishConfirmed(ctx context.Context, b model.Booking) {
	roomName := ""
	if rm, err := h.Rooms.GetByID(ctx, b.RoomID); err == nil {
		roomName = rm.Name
	}
	ref := ""
	if b.CaptureRef != nil {
		ref = *b.CaptureRef
	}
	_ = queue_publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		RoomID:      b.RoomID,
		RoomName:    roomName,
		CheckIn:     b.CheckIn.Format(dateLayout),
		CheckOut:    b.CheckOut.Format(dateLayout),
		Amount:      b.Amount,
		CaptureRef:  ref,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) publishCancelled(ctx context.Context, b model.Booking) {
	_ = queue_publisher.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
		BookingID:    b.ID,
		UserID:       b.UserID,
		RoomID:       b.RoomID,
		Amount:       b.Amount,
		RefundStatus: string(b.RefundStatus),
		CancelledAt:  time.Now().UTC().Format(time.RFC3339),
	})
}
