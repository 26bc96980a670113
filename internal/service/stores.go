package service

import (
	"context"
	"time"

	"staynest/internal/models"
)

// Store interfaces consumed by the services. The gorm repositories in
// internal/repository satisfy them; tests substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type ListingStore interface {
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	ListBlockedOverlapping(ctx context.Context, listingID uint, from, to time.Time) ([]models.BlockedDate, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error
	ListConfirmedOverlapping(ctx context.Context, listingID uint, checkIn, checkOut time.Time, excludeID uint) ([]models.Booking, error)
	WithListingLock(ctx context.Context, listingID uint, fn func(ctx context.Context) error) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByIntentionID(ctx context.Context, intentionID string) (*models.Payment, error)
	GetByBookingAndStatus(ctx context.Context, bookingID uint, status string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
}

type WalletStore interface {
	GetOrCreate(ctx context.Context, hostID uint) (*models.Wallet, error)
	Credit(ctx context.Context, hostID uint, amountCents int64) error
	Reserve(ctx context.Context, hostID uint, amountCents int64) (bool, error)
	Reverse(ctx context.Context, hostID uint, amountCents int64) error
	RecordTransaction(ctx context.Context, hostID uint, amountCents int64, txType, reference string) error
}

type PayoutStore interface {
	Create(ctx context.Context, p *models.Payout) error
	GetByGatewayTxnID(ctx context.Context, txnID string) (*models.Payout, error)
	// GetByGatewayTxnIDLocked takes a row lock; callers must hold an open
	// transaction on ctx.
	GetByGatewayTxnIDLocked(ctx context.Context, txnID string) (*models.Payout, error)
	Update(ctx context.Context, p *models.Payout) error
	AppendEvent(ctx context.Context, e *models.PayoutEvent) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// TxRunner executes fn atomically; repository calls made with the ctx it
// passes join one transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
