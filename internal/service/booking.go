package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"staynest/internal/domain"
	"staynest/internal/models"

	"github.com/google/uuid"
)

// BookingService owns the booking lifecycle:
// PENDING_PAYMENT -> CONFIRMED -> CANCELLED, plus the abandoned
// PENDING_PAYMENT -> CANCELLED path. Creation is a provisional hold and does
// not consult availability; confirmation runs the final guard under a
// per-listing lock.
type BookingService struct {
	bookings BookingStore
	listings ListingStore
	wallet   WalletStore
	guard    AvailabilityChecker
	refunds  Refunder
	notify   Notifier
}

func NewBookingService(bookings BookingStore, listings ListingStore, wallet WalletStore, guard AvailabilityChecker, refunds Refunder, notify Notifier) *BookingService {
	return &BookingService{
		bookings: bookings,
		listings: listings,
		wallet:   wallet,
		guard:    guard,
		refunds:  refunds,
		notify:   notify,
	}
}

// Create validates the request and persists a provisional hold. The hold does
// not block other guests; availability is only decisive at confirmation.
func (s *BookingService) Create(ctx context.Context, guestID, listingID uint, checkIn, checkOut time.Time, guests int) (*models.Booking, error) {
	if !checkOut.After(checkIn) {
		return nil, domain.Validation("check-out must be after check-in")
	}
	if checkIn.Before(startOfDay(time.Now())) {
		return nil, domain.Validation("check-in date is in the past")
	}
	if guests <= 0 {
		return nil, domain.Validation("guest count must be positive")
	}
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if guests > listing.Capacity {
		return nil, domain.Validation("guest count %d exceeds listing capacity %d", guests, listing.Capacity)
	}
	nights := models.NightsBetween(checkIn, checkOut)
	b := &models.Booking{
		Reference:       fmt.Sprintf("bk-%s", uuid.New().String()),
		ListingID:       listingID,
		GuestID:         guestID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          guests,
		TotalPriceCents: listing.NightlyPriceCents * int64(nights),
		Status:          domain.BookingPendingPayment,
		PaymentStatus:   domain.PaymentPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Confirm flips a booking to CONFIRMED after the payment-success trigger.
// The availability guard re-runs under a per-listing row lock, excluding the
// booking's own slot; losing that race is a ConflictError and the collected
// money is compensated through the refund coordinator.
func (s *BookingService) Confirm(ctx context.Context, bookingID uint) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	switch b.Status {
	case domain.BookingConfirmed:
		// The payment gateway retries its success callback; a confirmed
		// booking is a no-op, not an error.
		return nil
	case domain.BookingCancelled:
		// The gateway may still have collected for a checkout that was open
		// when the guest cancelled; that money must go back.
		conflict := &domain.ConflictError{Reason: "booking was cancelled before confirmation"}
		s.compensateFailedConfirmation(ctx, b, conflict.Reason)
		return conflict
	}

	err = s.bookings.WithListingLock(ctx, b.ListingID, func(ctx context.Context) error {
		ok, reason, err := s.guard.IsAvailable(ctx, b.ListingID, b.CheckIn, b.CheckOut, b.ID)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.ConflictError{Reason: reason}
		}
		b.Status = domain.BookingConfirmed
		return s.bookings.Update(ctx, b)
	})
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		s.compensateFailedConfirmation(ctx, b, conflict.Reason)
		return err
	}
	if err != nil {
		return err
	}

	s.notify.Notify(ctx, b.GuestID, domain.NotificationBookingConfirmed,
		"Booking confirmed", fmt.Sprintf("Your stay %s is confirmed.", b.Reference))
	if listing, lerr := s.listings.GetByID(ctx, b.ListingID); lerr == nil {
		s.notify.Notify(ctx, listing.HostID, domain.NotificationBookingConfirmed,
			"New confirmed booking", fmt.Sprintf("Booking %s was confirmed for your listing.", b.Reference))
	}
	return nil
}

// compensateFailedConfirmation refunds money collected for a booking that can
// no longer confirm, whether it lost the final availability race or was
// cancelled while its checkout stayed open. When the automatic refund cannot
// run the failure is logged loudly for operator follow-up; the booking stays
// unconfirmed either way.
func (s *BookingService) compensateFailedConfirmation(ctx context.Context, b *models.Booking, reason string) {
	outcome, err := s.refunds.RefundIfPaid(ctx, b.ID)
	switch outcome {
	case Refunded:
		log.Printf("[booking] %s cannot confirm (%s); collected payment refunded", b.Reference, reason)
	case NoPaymentToRefund:
		log.Printf("[booking] %s cannot confirm (%s); nothing collected yet", b.Reference, reason)
	case RefundFailed:
		log.Printf("[booking] ALERT %s cannot confirm (%s) and refund failed: %v, manual refund required", b.Reference, reason, err)
	}
}

// Cancel cancels a booking on behalf of its guest or an admin. The refund
// runs first: if it fails, the cancellation aborts and the booking stays
// confirmed, protecting the guest's money over freeing the calendar.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID uint, actorRole string) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.GuestID != actorID && actorRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if b.Status == domain.BookingCancelled {
		return &domain.ConflictError{Reason: "booking is already cancelled"}
	}
	if time.Until(b.CheckIn).Hours() < domain.CancellationWindowHours {
		return &domain.PolicyError{Msg: "cancellation window closed"}
	}

	outcome, err := s.refunds.RefundIfPaid(ctx, b.ID)
	if outcome == RefundFailed {
		if err == nil {
			err = errors.New("refund failed")
		}
		return fmt.Errorf("cancellation aborted: %w", err)
	}
	// Close the door on a still-open checkout: a voided payment can never be
	// marked paid, so the stale checkout URL cannot collect after this point.
	if err := s.refunds.VoidPending(ctx, b.ID); err != nil {
		return fmt.Errorf("cancellation aborted: %w", err)
	}

	// The refund coordinator writes paymentStatus through its own read of the
	// booking; reload before saving so the cancellation keeps that update.
	b, err = s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Status = domain.BookingCancelled
	if err := s.bookings.Update(ctx, b); err != nil {
		return err
	}
	s.notify.Notify(ctx, b.GuestID, domain.NotificationBookingCancelled,
		"Booking cancelled", fmt.Sprintf("Booking %s was cancelled (%s).", b.Reference, outcome))
	if listing, lerr := s.listings.GetByID(ctx, b.ListingID); lerr == nil {
		s.notify.Notify(ctx, listing.HostID, domain.NotificationBookingCancelled,
			"Booking cancelled", fmt.Sprintf("Booking %s on your listing was cancelled.", b.Reference))
	}
	return nil
}

// RecognizeEarnings credits the host wallet for a completed, paid stay.
// Admin-triggered; the EarningsRecognizedAt stamp makes it apply once.
func (s *BookingService) RecognizeEarnings(ctx context.Context, bookingID uint) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != domain.BookingConfirmed || b.PaymentStatus != domain.PaymentPaid {
		return &domain.PolicyError{Msg: "only confirmed, paid bookings earn revenue"}
	}
	if b.EarningsRecognizedAt != nil {
		return &domain.ConflictError{Reason: "earnings already recognized for this booking"}
	}
	listing, err := s.listings.GetByID(ctx, b.ListingID)
	if err != nil {
		return err
	}
	if err := s.wallet.Credit(ctx, listing.HostID, b.TotalPriceCents); err != nil {
		return err
	}
	if err := s.wallet.RecordTransaction(ctx, listing.HostID, b.TotalPriceCents, domain.WalletTxTypeEarning, b.Reference); err != nil {
		log.Printf("[booking] earning tx record failed booking=%s: %v", b.Reference, err)
	}
	now := time.Now()
	b.EarningsRecognizedAt = &now
	return s.bookings.Update(ctx, b)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
