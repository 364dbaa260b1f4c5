package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
)

// RegisterBookings registers the reservation routes.  Availability and
// booked-date lookups are public so guests can browse a calendar before
// signing up; everything that creates or reads personal state requires a
// valid JWT.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Availability answers change with every booking, so only the rate
	// limiter applies here, never the response cache.
	pub := e.Group("/v1", rl)
	pub.GET("/rooms/:id/booked-dates", h.BookedDates)
	pub.GET("/rooms/:id/availability", h.Availability)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER", "CUSTOMER"),
	)
	auth.POST("/bookings", h.CreateBooking)
	auth.PUT("/bookings/:id/cancel", h.CancelBooking)
	auth.GET("/bookings/:id", h.GetBooking)
	auth.GET("/my-bookings", h.MyBookings)
}

// RegisterPayments registers the PayPal checkout routes.  Order creation and
// capture require any authenticated user; direct capture refunds are an
// owner-only escape hatch.
func RegisterPayments(e *echo.Echo, h *handler.PayPalHandler, jwtSecret string) {
	auth := e.Group(
		"/v1/paypal",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER", "CUSTOMER"),
	)
	auth.POST("/orders", h.CreateOrder)
	auth.POST("/orders/:id/capture", h.CaptureOrder)

	owner := e.Group(
		"/v1/paypal",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)
	owner.POST("/captures/:id/refund", h.RefundCapture)
}
