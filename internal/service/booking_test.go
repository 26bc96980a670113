package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"staynest/internal/domain"
	"staynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	bookings *fakeBookingStore
	listings *fakeListingStore
	wallet   *fakeWalletStore
	payments *fakePaymentStore
	provider *fakePaymentProvider
	notify   *fakeNotifier
	svc      *BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings: newFakeBookingStore(),
		listings: newFakeListingStore(),
		wallet:   newFakeWalletStore(),
		payments: newFakePaymentStore(),
		provider: &fakePaymentProvider{},
		notify:   &fakeNotifier{},
	}
	guard := NewAvailabilityService(f.bookings, f.listings)
	refunds := NewRefundCoordinator(f.payments, f.bookings, f.provider)
	f.svc = NewBookingService(f.bookings, f.listings, f.wallet, guard, refunds, f.notify)
	return f
}

func TestBookingCreate_Validation(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10, Capacity: 2, NightlyPriceCents: 12000})
	ctx := context.Background()
	in := time.Now().Add(72 * time.Hour)

	var verr *domain.ValidationError

	_, err := f.svc.Create(ctx, 5, 1, in, in, 2)
	require.ErrorAs(t, err, &verr, "check-out equal to check-in")

	_, err = f.svc.Create(ctx, 5, 1, in.Add(24*time.Hour), in, 2)
	require.ErrorAs(t, err, &verr, "check-out before check-in")

	_, err = f.svc.Create(ctx, 5, 1, time.Now().Add(-48*time.Hour), in, 2)
	require.ErrorAs(t, err, &verr, "check-in in the past")

	_, err = f.svc.Create(ctx, 5, 1, in, in.Add(48*time.Hour), 0)
	require.ErrorAs(t, err, &verr, "zero guests")

	_, err = f.svc.Create(ctx, 5, 1, in, in.Add(48*time.Hour), 3)
	require.ErrorAs(t, err, &verr, "guests over capacity")
}

func TestBookingCreate_PricesByNights(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10, Capacity: 4, NightlyPriceCents: 12500})
	in := date(2030, 6, 10)
	out := date(2030, 6, 14)

	b, err := f.svc.Create(context.Background(), 5, 1, in, out, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4*12500), b.TotalPriceCents)
	assert.Equal(t, domain.BookingPendingPayment, b.Status)
	assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
	assert.NotEmpty(t, b.Reference)
}

func TestBookingCreate_HoldDoesNotBlockSecondHold(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10, Capacity: 4, NightlyPriceCents: 10000})
	in := date(2030, 6, 10)
	out := date(2030, 6, 14)

	_, err := f.svc.Create(context.Background(), 5, 1, in, out, 2)
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), 6, 1, in, out, 2)
	require.NoError(t, err, "two provisional holds on the same dates must coexist")
}

func TestBookingConfirm_Succeeds(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10, Capacity: 4})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: date(2030, 6, 10), CheckOut: date(2030, 6, 14),
		Status: domain.BookingPendingPayment, PaymentStatus: domain.PaymentPaid,
	})

	require.NoError(t, f.svc.Confirm(context.Background(), b.ID))

	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Len(t, f.notify.sent, 2, "guest and host are notified")
}

func TestBookingConfirm_AlreadyConfirmedIsNoop(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: date(2030, 6, 10), CheckOut: date(2030, 6, 14),
		Status: domain.BookingConfirmed,
	})

	require.NoError(t, f.svc.Confirm(context.Background(), b.ID))
	assert.Empty(t, f.notify.sent, "replayed confirmation must not re-notify")
}

func TestBookingConfirm_LosesRaceAndRefunds(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	// A rival booking already took the dates.
	f.bookings.add(&models.Booking{
		Reference: "bk-winner", ListingID: 1, GuestID: 6,
		CheckIn: date(2030, 6, 10), CheckOut: date(2030, 6, 14),
		Status: domain.BookingConfirmed,
	})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-loser", ListingID: 1, GuestID: 5,
		CheckIn: date(2030, 6, 12), CheckOut: date(2030, 6, 16),
		Status: domain.BookingPendingPayment, PaymentStatus: domain.PaymentPaid,
	})
	txn := "txn-123"
	require.NoError(t, f.payments.Create(context.Background(), &models.Payment{
		BookingID: b.ID, GuestID: 5, AmountCents: 40000,
		Status: domain.PaymentPaid, GatewayIntentionID: "int-1",
		IdempotencyKey: "k1", GatewayTxnID: &txn,
	}))

	err := f.svc.Confirm(context.Background(), b.ID)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	got, gerr := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.BookingPendingPayment, got.Status, "losing booking stays unconfirmed")
	assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus, "collected money is refunded")
	assert.Equal(t, []string{txn}, f.provider.refundedTxns)
}

func TestBookingConfirm_CancelledBookingConflicts(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: date(2030, 6, 10), CheckOut: date(2030, 6, 14),
		Status: domain.BookingCancelled,
	})

	err := f.svc.Confirm(context.Background(), b.ID)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestBookingCancel_WindowClosed(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	// 40 hours out: inside the 48h window.
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: time.Now().Add(40 * time.Hour), CheckOut: time.Now().Add(88 * time.Hour),
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
	})

	err := f.svc.Cancel(context.Background(), b.ID, 5, domain.RoleGuest)
	var policy *domain.PolicyError
	require.ErrorAs(t, err, &policy)

	got, gerr := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.BookingConfirmed, got.Status, "booking unchanged when window is closed")
	assert.Zero(t, f.provider.refundCalls, "no refund attempted")
}

func TestBookingCancel_RefundRunsBeforeCancellation(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: time.Now().Add(100 * time.Hour), CheckOut: time.Now().Add(148 * time.Hour),
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
	})
	txn := "txn-9"
	require.NoError(t, f.payments.Create(context.Background(), &models.Payment{
		BookingID: b.ID, GuestID: 5, AmountCents: 48000,
		Status: domain.PaymentPaid, GatewayIntentionID: "int-9",
		IdempotencyKey: "k9", GatewayTxnID: &txn,
	}))

	require.NoError(t, f.svc.Cancel(context.Background(), b.ID, 5, domain.RoleGuest))

	got, gerr := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus)
}

func TestBookingCancel_RefundFailureAborts(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	f.provider.refundErr = errors.New("gateway down")
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: time.Now().Add(100 * time.Hour), CheckOut: time.Now().Add(148 * time.Hour),
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
	})
	txn := "txn-9"
	require.NoError(t, f.payments.Create(context.Background(), &models.Payment{
		BookingID: b.ID, GuestID: 5, AmountCents: 48000,
		Status: domain.PaymentPaid, GatewayIntentionID: "int-9",
		IdempotencyKey: "k9", GatewayTxnID: &txn,
	}))

	err := f.svc.Cancel(context.Background(), b.ID, 5, domain.RoleGuest)
	require.Error(t, err)

	got, gerr := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.BookingConfirmed, got.Status, "cancellation aborts when the refund fails")
}

// Cancelling a pending booking voids its open payment, so the stale checkout
// reference can never collect afterwards.
func TestBookingCancel_VoidsPendingPayment(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: time.Now().Add(100 * time.Hour), CheckOut: time.Now().Add(148 * time.Hour),
		Status: domain.BookingPendingPayment, PaymentStatus: domain.PaymentPending,
	})
	require.NoError(t, f.payments.Create(context.Background(), &models.Payment{
		BookingID: b.ID, GuestID: 5, AmountCents: 48000,
		Status: domain.PaymentPending, GatewayIntentionID: "int-open",
		IdempotencyKey: "ko", CheckoutURL: "https://checkout.test/int-open",
	}))

	require.NoError(t, f.svc.Cancel(context.Background(), b.ID, 5, domain.RoleGuest))

	_, err := f.payments.GetByBookingAndStatus(context.Background(), b.ID, domain.PaymentPending)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound, "pending payment is voided")
	voided, err := f.payments.GetByBookingAndStatus(context.Background(), b.ID, domain.PaymentFailed)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, voided.Status)

	// The gateway's late success callback bounces off the voided payment.
	paySvc := NewPaymentService(f.payments, f.bookings, nil, nil, nil, nil)
	_, err = paySvc.MarkPaid(context.Background(), "int-open", "txn-late")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

// Money collected for a booking after its cancellation is refunded when the
// confirmation trigger arrives, not stranded.
func TestBookingConfirm_RefundsCancelledBooking(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: date(2030, 6, 10), CheckOut: date(2030, 6, 14),
		Status: domain.BookingCancelled, PaymentStatus: domain.PaymentPaid,
	})
	txn := "txn-late"
	require.NoError(t, f.payments.Create(context.Background(), &models.Payment{
		BookingID: b.ID, GuestID: 5, AmountCents: 40000,
		Status: domain.PaymentPaid, GatewayIntentionID: "int-late",
		IdempotencyKey: "kl", GatewayTxnID: &txn,
	}))

	err := f.svc.Confirm(context.Background(), b.ID)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	assert.Equal(t, []string{txn}, f.provider.refundedTxns, "collected money goes back")
	got, gerr := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus)
}

// Two pending bookings on overlapping dates confirmed from concurrent
// goroutines: the per-listing lock admits exactly one.
func TestBookingConfirm_ConcurrentConfirmsAdmitOne(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	first := f.bookings.add(&models.Booking{
		Reference: "bk-a", ListingID: 1, GuestID: 5,
		CheckIn: date(2030, 6, 10), CheckOut: date(2030, 6, 14),
		Status: domain.BookingPendingPayment,
	})
	second := f.bookings.add(&models.Booking{
		Reference: "bk-b", ListingID: 1, GuestID: 6,
		CheckIn: date(2030, 6, 12), CheckOut: date(2030, 6, 16),
		Status: domain.BookingPendingPayment,
	})

	errs := make(chan error, 2)
	for _, id := range []uint{first.ID, second.ID} {
		go func(bookingID uint) {
			errs <- f.svc.Confirm(context.Background(), bookingID)
		}(id)
	}

	var confirmed, conflicted int
	for i := 0; i < 2; i++ {
		err := <-errs
		if err == nil {
			confirmed++
			continue
		}
		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		conflicted++
	}
	assert.Equal(t, 1, confirmed, "exactly one booking wins the dates")
	assert.Equal(t, 1, conflicted)
}

func TestBookingCancel_Authorization(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5,
		CheckIn: time.Now().Add(100 * time.Hour), CheckOut: time.Now().Add(148 * time.Hour),
		Status: domain.BookingPendingPayment,
	})

	err := f.svc.Cancel(context.Background(), b.ID, 7, domain.RoleGuest)
	require.ErrorIs(t, err, domain.ErrForbidden)

	// Admin may cancel on anyone's behalf.
	require.NoError(t, f.svc.Cancel(context.Background(), b.ID, 99, domain.RoleAdmin))

	// Second cancel conflicts.
	err = f.svc.Cancel(context.Background(), b.ID, 5, domain.RoleGuest)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestRecognizeEarnings_AppliesOnce(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5, TotalPriceCents: 50000,
		CheckIn: date(2024, 6, 10), CheckOut: date(2024, 6, 14),
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
	})

	require.NoError(t, f.svc.RecognizeEarnings(context.Background(), b.ID))
	assert.Equal(t, int64(50000), f.wallet.balance(10))

	err := f.svc.RecognizeEarnings(context.Background(), b.ID)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(50000), f.wallet.balance(10), "credit applies exactly once")
}

func TestRecognizeEarnings_RequiresConfirmedPaid(t *testing.T) {
	f := newBookingFixture()
	f.listings.add(&models.Listing{ID: 1, HostID: 10})
	b := f.bookings.add(&models.Booking{
		Reference: "bk-1", ListingID: 1, GuestID: 5, TotalPriceCents: 50000,
		CheckIn: date(2024, 6, 10), CheckOut: date(2024, 6, 14),
		Status: domain.BookingPendingPayment, PaymentStatus: domain.PaymentPending,
	})

	err := f.svc.RecognizeEarnings(context.Background(), b.ID)
	var policy *domain.PolicyError
	require.ErrorAs(t, err, &policy)
	assert.Zero(t, f.wallet.balance(10))
}
