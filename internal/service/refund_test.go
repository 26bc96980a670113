package service

import (
	"context"
	"errors"
	"testing"

	"staynest/internal/domain"
	"staynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundIfPaid_NoPayment(t *testing.T) {
	payments := newFakePaymentStore()
	bookings := newFakeBookingStore()
	provider := &fakePaymentProvider{}
	c := NewRefundCoordinator(payments, bookings, provider)

	outcome, err := c.RefundIfPaid(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, NoPaymentToRefund, outcome)
	assert.Zero(t, provider.refundCalls)
}

func TestRefundIfPaid_Refunds(t *testing.T) {
	payments := newFakePaymentStore()
	bookings := newFakeBookingStore()
	provider := &fakePaymentProvider{}
	c := NewRefundCoordinator(payments, bookings, provider)

	b := bookings.add(&models.Booking{Reference: "bk-1", Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid})
	txn := "txn-7"
	require.NoError(t, payments.Create(context.Background(), &models.Payment{
		BookingID: b.ID, AmountCents: 30000, Status: domain.PaymentPaid,
		GatewayIntentionID: "int-7", IdempotencyKey: "k7", GatewayTxnID: &txn,
	}))

	outcome, err := c.RefundIfPaid(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, Refunded, outcome)

	p, err := payments.GetByBookingAndStatus(context.Background(), b.ID, domain.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, p.Status)

	got, err := bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus)
}

func TestRefundIfPaid_GatewayFailureLeavesStateUntouched(t *testing.T) {
	payments := newFakePaymentStore()
	bookings := newFakeBookingStore()
	provider := &fakePaymentProvider{refundErr: errors.New("gateway 503")}
	c := NewRefundCoordinator(payments, bookings, provider)

	b := bookings.add(&models.Booking{Reference: "bk-1", Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid})
	txn := "txn-7"
	require.NoError(t, payments.Create(context.Background(), &models.Payment{
		BookingID: b.ID, AmountCents: 30000, Status: domain.PaymentPaid,
		GatewayIntentionID: "int-7", IdempotencyKey: "k7", GatewayTxnID: &txn,
	}))

	outcome, err := c.RefundIfPaid(context.Background(), b.ID)
	assert.Equal(t, RefundFailed, outcome)
	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)

	// Retry-safe: the payment is still PAID.
	p, perr := payments.GetByBookingAndStatus(context.Background(), b.ID, domain.PaymentPaid)
	require.NoError(t, perr)
	assert.Equal(t, domain.PaymentPaid, p.Status)
}

func TestRefundIfPaid_MissingTxnReference(t *testing.T) {
	payments := newFakePaymentStore()
	bookings := newFakeBookingStore()
	provider := &fakePaymentProvider{}
	c := NewRefundCoordinator(payments, bookings, provider)

	b := bookings.add(&models.Booking{Reference: "bk-1", Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid})
	require.NoError(t, payments.Create(context.Background(), &models.Payment{
		BookingID: b.ID, AmountCents: 30000, Status: domain.PaymentPaid,
		GatewayIntentionID: "int-7", IdempotencyKey: "k7",
	}))

	outcome, err := c.RefundIfPaid(context.Background(), b.ID)
	assert.Equal(t, RefundFailed, outcome)
	var integrity *domain.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Zero(t, provider.refundCalls, "no gateway call without a transaction reference")
}
