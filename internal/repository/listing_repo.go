package repository

import (
	"context"
	"errors"
	"time"

	"staynest/internal/database"
	"staynest/internal/domain"
	"staynest/internal/models"

	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) dbFrom(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *ListingRepository) Create(ctx context.Context, l *models.Listing) error {
	return r.dbFrom(ctx).Create(l).Error
}

func (r *ListingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var l models.Listing
	if err := r.dbFrom(ctx).First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *models.Listing) error {
	return r.dbFrom(ctx).Save(l).Error
}

func (r *ListingRepository) ListByHost(ctx context.Context, hostID uint) ([]models.Listing, error) {
	var out []models.Listing
	err := r.dbFrom(ctx).Where("host_id = ?", hostID).Order("id DESC").Find(&out).Error
	return out, err
}

func (r *ListingRepository) CreateBlockedDate(ctx context.Context, b *models.BlockedDate) error {
	return r.dbFrom(ctx).Create(b).Error
}

func (r *ListingRepository) DeleteBlockedDate(ctx context.Context, listingID, id uint) error {
	return r.dbFrom(ctx).Where("listing_id = ?", listingID).Delete(&models.BlockedDate{}, id).Error
}

func (r *ListingRepository) ListBlockedDates(ctx context.Context, listingID uint) ([]models.BlockedDate, error) {
	var out []models.BlockedDate
	err := r.dbFrom(ctx).Where("listing_id = ?", listingID).Order("start_date").Find(&out).Error
	return out, err
}

// ListBlockedOverlapping returns blocked ranges intersecting [from, to).
func (r *ListingRepository) ListBlockedOverlapping(ctx context.Context, listingID uint, from, to time.Time) ([]models.BlockedDate, error) {
	var out []models.BlockedDate
	err := r.dbFrom(ctx).
		Where("listing_id = ? AND start_date < ? AND end_date > ?", listingID, to, from).
		Find(&out).Error
	return out, err
}
