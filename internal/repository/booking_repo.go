package repository

import (
	"context"
	"errors"
	"time"

	"staynest/internal/database"
	"staynest/internal/domain"
	"staynest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) dbFrom(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	return r.dbFrom(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.dbFrom(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *models.Booking) error {
	return r.dbFrom(ctx).Save(b).Error
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID uint) ([]models.Booking, error) {
	var out []models.Booking
	err := r.dbFrom(ctx).Where("guest_id = ?", guestID).Order("check_in DESC").Find(&out).Error
	return out, err
}

// ListConfirmedOverlapping returns confirmed bookings whose half-open
// [check_in, check_out) interval intersects [checkIn, checkOut), excluding
// excludeID when non-zero. Pending holds deliberately do not count.
func (r *BookingRepository) ListConfirmedOverlapping(ctx context.Context, listingID uint, checkIn, checkOut time.Time, excludeID uint) ([]models.Booking, error) {
	q := r.dbFrom(ctx).
		Where("listing_id = ? AND status = ?", listingID, domain.BookingConfirmed).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var out []models.Booking
	err := q.Find(&out).Error
	return out, err
}

// WithListingLock runs fn inside a transaction holding a row lock on the
// listing, serializing confirmations per listing. The transaction handle is
// carried on the context so repository calls inside fn join it.
func (r *BookingRepository) WithListingLock(ctx context.Context, listingID uint, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrListingNotFound
			}
			return err
		}
		return fn(database.WithTx(ctx, tx))
	})
}
