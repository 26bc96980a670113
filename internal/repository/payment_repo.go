package repository

import (
	"context"
	"errors"

	"staynest/internal/database"
	"staynest/internal/domain"
	"staynest/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) dbFrom(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.dbFrom(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.dbFrom(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByIntentionID(ctx context.Context, intentionID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.dbFrom(ctx).Where("gateway_intention_id = ?", intentionID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByBookingAndStatus returns the payment in the given status for a
// booking. At most one PENDING and at most one PAID payment exist per
// booking; callers rely on that.
func (r *PaymentRepository) GetByBookingAndStatus(ctx context.Context, bookingID uint, status string) (*models.Payment, error) {
	var p models.Payment
	err := r.dbFrom(ctx).
		Where("booking_id = ? AND status = ?", bookingID, status).
		Order("id DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	return r.dbFrom(ctx).Save(p).Error
}
