package service

import (
	"context"
	"errors"
	"log"
	"time"

	"staynest/internal/domain"
	"staynest/pkg/gateway"
)

// RefundOutcome is a tri-state result: "no refund needed" is a normal
// answer, not an error.
type RefundOutcome int

const (
	NoPaymentToRefund RefundOutcome = iota
	Refunded
	RefundFailed
)

func (o RefundOutcome) String() string {
	switch o {
	case NoPaymentToRefund:
		return "no_payment_to_refund"
	case Refunded:
		return "refunded"
	default:
		return "refund_failed"
	}
}

// Refunder is the slice of the coordinator other services consume.
type Refunder interface {
	RefundIfPaid(ctx context.Context, bookingID uint) (RefundOutcome, error)
	VoidPending(ctx context.Context, bookingID uint) error
}

// RefundCoordinator reverses collected money for a booking. It never mutates
// state on failure, so callers may retry safely; the gateway's own
// idempotency covers the rest.
type RefundCoordinator struct {
	payments PaymentStore
	bookings BookingStore
	provider gateway.PaymentProvider
}

func NewRefundCoordinator(payments PaymentStore, bookings BookingStore, provider gateway.PaymentProvider) *RefundCoordinator {
	return &RefundCoordinator{payments: payments, bookings: bookings, provider: provider}
}

// VoidPending marks a booking's pending payment FAILED so its checkout
// reference can no longer collect money. A booking with no pending payment is
// a no-op.
func (c *RefundCoordinator) VoidPending(ctx context.Context, bookingID uint) error {
	p, err := c.payments.GetByBookingAndStatus(ctx, bookingID, domain.PaymentPending)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil
		}
		return err
	}
	p.Status = domain.PaymentFailed
	if err := c.payments.Update(ctx, p); err != nil {
		return err
	}
	log.Printf("[refund] booking=%d pending payment %d voided", bookingID, p.ID)
	return nil
}

func (c *RefundCoordinator) RefundIfPaid(ctx context.Context, bookingID uint) (RefundOutcome, error) {
	p, err := c.payments.GetByBookingAndStatus(ctx, bookingID, domain.PaymentPaid)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return NoPaymentToRefund, nil
		}
		return RefundFailed, err
	}
	if p.GatewayTxnID == nil || *p.GatewayTxnID == "" {
		// Paid money with no transaction reference cannot be reversed
		// automatically; keep every state untouched and surface it.
		return RefundFailed, &domain.IntegrityError{
			Msg: "paid payment has no gateway transaction reference; manual refund required",
		}
	}
	if err := c.provider.RefundTransaction(ctx, *p.GatewayTxnID, p.AmountCents); err != nil {
		log.Printf("[refund] gateway refund failed booking=%d txn=%s: %v", bookingID, *p.GatewayTxnID, err)
		return RefundFailed, &domain.UpstreamError{Op: "refund transaction", Err: err}
	}
	now := time.Now()
	p.Status = domain.PaymentRefunded
	if err := c.payments.Update(ctx, p); err != nil {
		return RefundFailed, err
	}
	b, err := c.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return RefundFailed, err
	}
	b.PaymentStatus = domain.PaymentRefunded
	if err := c.bookings.Update(ctx, b); err != nil {
		return RefundFailed, err
	}
	log.Printf("[refund] booking=%d amount=%d refunded at %s", bookingID, p.AmountCents, now.Format(time.RFC3339))
	return Refunded, nil
}
