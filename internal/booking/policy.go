package booking

import "github.com/iliyamo/room-reservation/internal/model"

// Decision classifies what a cancellation request must do with the payment
// gateway.  The rules make cancellation idempotent and keep the refund an
// at-most-once operation: re-entrant cancel calls never re-invoke the
// gateway.
type Decision int

const (
	// DecisionAlreadyCancelled: the booking is CANCELLED; return it as-is.
	DecisionAlreadyCancelled Decision = iota
	// DecisionSkipRefund: the refund already completed (possibly out of
	// band); force the status to CANCELLED without calling the gateway.
	DecisionSkipRefund
	// DecisionRefund: a capture backs this booking; issue a refund.
	DecisionRefund
	// DecisionNoRefund: no capture exists; cancel with NOT_APPLICABLE.
	DecisionNoRefund
)

// Reconcile inspects the booking and returns the cancellation path to take.
func Reconcile(b model.Booking) Decision {
	if b.Status == model.BookingCancelled {
		return DecisionAlreadyCancelled
	}
	if b.RefundStatus == model.RefundCompleted {
		return DecisionSkipRefund
	}
	if b.CaptureRef != nil && *b.CaptureRef != "" {
		return DecisionRefund
	}
	return DecisionNoRefund
}

// InitialRefundStatus returns the refund status a new booking starts with:
// PENDING when a payment capture precedes the booking, NOT_APPLICABLE
// otherwise.
func InitialRefundStatus(captureRef string) model.RefundStatus {
	if captureRef != "" {
		return model.RefundPending
	}
	return model.RefundNotApplicable
}
