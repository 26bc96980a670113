package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/internal/domain"
	"staynest/internal/models"
	"staynest/pkg/gateway"

	"github.com/google/uuid"
)

// PaymentService opens gateway intentions for pending bookings. A booking
// gets at most one PENDING payment: retried client requests are answered
// with the existing checkout reference instead of a second intention, which
// is the primary defense against double charging.
type PaymentService struct {
	payments PaymentStore
	bookings BookingStore
	listings ListingStore
	users    UserStore
	guard    AvailabilityChecker
	provider gateway.PaymentProvider
}

func NewPaymentService(payments PaymentStore, bookings BookingStore, listings ListingStore, users UserStore, guard AvailabilityChecker, provider gateway.PaymentProvider) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		listings: listings,
		users:    users,
		guard:    guard,
		provider: provider,
	}
}

type InitiateResult struct {
	PaymentID   uint   `json:"payment_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Initiate opens (or re-returns) the payment intention for a booking. The
// three pre-charge checks run in order and any failure aborts with no side
// effects: the listing still accepts reservations, the dates are still
// free, and the booking is still awaiting payment.
func (s *PaymentService) Initiate(ctx context.Context, bookingID, actorID uint) (*InitiateResult, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != actorID {
		return nil, domain.ErrForbidden
	}

	if existing, err := s.payments.GetByBookingAndStatus(ctx, b.ID, domain.PaymentPending); err == nil {
		return &InitiateResult{PaymentID: existing.ID, CheckoutURL: existing.CheckoutURL}, nil
	} else if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}

	listing, err := s.listings.GetByID(ctx, b.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.AcceptingBookings {
		return nil, &domain.PolicyError{Msg: "listing is not accepting reservations"}
	}
	ok, reason, err := s.guard.IsAvailable(ctx, b.ListingID, b.CheckIn, b.CheckOut, b.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ConflictError{Reason: reason}
	}
	if b.Status != domain.BookingPendingPayment {
		return nil, &domain.ConflictError{Reason: "booking is no longer awaiting payment"}
	}

	guest, err := s.users.GetByID(ctx, b.GuestID)
	if err != nil {
		return nil, err
	}
	idemKey := uuid.New().String()
	resp, err := s.provider.CreateIntention(ctx, gateway.IntentionRequest{
		AmountCents:   b.TotalPriceCents,
		Currency:      listing.Currency,
		SpecialRef:    idemKey,
		CustomerEmail: guest.Email,
		CustomerName:  guest.Name,
		Metadata:      map[string]string{"booking_reference": b.Reference},
	})
	if err != nil {
		return nil, &domain.UpstreamError{Op: "create payment intention", Err: err}
	}

	p := &models.Payment{
		BookingID:          b.ID,
		GuestID:            b.GuestID,
		AmountCents:        b.TotalPriceCents,
		Currency:           listing.Currency,
		Status:             domain.PaymentPending,
		GatewayIntentionID: resp.IntentionID,
		IdempotencyKey:     idemKey,
		CheckoutURL:        resp.CheckoutURL,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	b.PaymentID = &p.ID
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return &InitiateResult{PaymentID: p.ID, CheckoutURL: resp.CheckoutURL}, nil
}

// MarkPaid records gateway collection for an intention. Replayed success
// callbacks are no-ops. Returns the payment so the caller can drive booking
// confirmation.
func (s *PaymentService) MarkPaid(ctx context.Context, intentionID, gatewayTxnID string) (*models.Payment, error) {
	p, err := s.payments.GetByIntentionID(ctx, intentionID)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.PaymentPaid {
		return p, nil
	}
	if p.Status != domain.PaymentPending {
		return nil, &domain.ConflictError{Reason: fmt.Sprintf("payment is %s, cannot mark paid", p.Status)}
	}
	now := time.Now()
	p.Status = domain.PaymentPaid
	p.GatewayTxnID = &gatewayTxnID
	p.PaidAt = &now
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	b.PaymentStatus = domain.PaymentPaid
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return p, nil
}
