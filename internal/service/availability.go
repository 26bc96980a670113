package service

import (
	"context"
	"fmt"
	"time"
)

// AvailabilityChecker is the predicate consumed by booking and payment flows.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, listingID uint, checkIn, checkOut time.Time, excludeBookingID uint) (bool, string, error)
}

// AvailabilityService decides whether a date range on a listing is free of
// conflicting confirmed bookings and host-imposed blocks. Pure predicate,
// no side effects. Pending payment holds deliberately do not block: two
// guests may race to PENDING_PAYMENT for the same dates, and the conflict is
// settled by the final guard at confirmation.
type AvailabilityService struct {
	bookings BookingStore
	listings ListingStore
}

func NewAvailabilityService(bookings BookingStore, listings ListingStore) *AvailabilityService {
	return &AvailabilityService{bookings: bookings, listings: listings}
}

// IsAvailable checks confirmed-booking overlap and blocked calendar dates
// over the half-open range [checkIn, checkOut). excludeBookingID skips a
// booking's own slot when re-validating it; pass 0 otherwise.
func (s *AvailabilityService) IsAvailable(ctx context.Context, listingID uint, checkIn, checkOut time.Time, excludeBookingID uint) (bool, string, error) {
	conflicts, err := s.bookings.ListConfirmedOverlapping(ctx, listingID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, "", err
	}
	if len(conflicts) > 0 {
		return false, fmt.Sprintf("dates conflict with confirmed booking %s", conflicts[0].Reference), nil
	}
	blocked, err := s.listings.ListBlockedOverlapping(ctx, listingID, checkIn, checkOut)
	if err != nil {
		return false, "", err
	}
	if len(blocked) > 0 {
		b := blocked[0]
		return false, fmt.Sprintf("host has blocked %s to %s", b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02")), nil
	}
	return true, "", nil
}
