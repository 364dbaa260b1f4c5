package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/payment"
)

// PayPalHandler fronts the checkout flow: the client creates an order, the
// buyer approves it, and the client captures it to obtain the capture id it
// then passes to the booking endpoint.
type PayPalHandler struct {
	Gateway *payment.Client
}

func NewPayPalHandler(g *payment.Client) *PayPalHandler {
	return &PayPalHandler{Gateway: g}
}

type createOrderReq struct {
	Amount float64 `json:"amount"`
}
type refundReq struct {
	Amount float64 `json:"amount"`
}

// CreateOrder starts a checkout for the given amount and returns the order
// with its approve link.
func (h *PayPalHandler) CreateOrder(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "positive amount required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	ord, err := h.Gateway.CreateOrder(ctx, req.Amount)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "create order failed"})
	}
	return c.JSON(http.StatusCreated, ord)
}

// CaptureOrder finalizes an approved order.  The returned capture_id is what
// the booking request must carry as capture_ref.
func (h *PayPalHandler) CaptureOrder(c echo.Context) error {
	orderID := strings.TrimSpace(c.Param("id"))
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order id required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	res, err := h.Gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "capture failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// RefundCapture refunds a capture directly, outside the booking lifecycle.
// OWNER-only; customer refunds run through booking cancellation instead.
func (h *PayPalHandler) RefundCapture(c echo.Context) error {
	captureID := strings.TrimSpace(c.Param("id"))
	if captureID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capture id required"})
	}
	var req refundReq
	if err := c.Bind(&req); err != nil || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "positive amount required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	res, err := h.Gateway.Refund(ctx, captureID, req.Amount)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "refund failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": res.Status, "refund_id": res.RefundID})
}
