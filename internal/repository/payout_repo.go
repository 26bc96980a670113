package repository

import (
	"context"
	"errors"

	"staynest/internal/database"
	"staynest/internal/domain"
	"staynest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) dbFrom(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *PayoutRepository) Create(ctx context.Context, p *models.Payout) error {
	return r.dbFrom(ctx).Create(p).Error
}

func (r *PayoutRepository) GetByID(ctx context.Context, id uint) (*models.Payout, error) {
	var p models.Payout
	if err := r.dbFrom(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetByGatewayTxnID(ctx context.Context, txnID string) (*models.Payout, error) {
	var p models.Payout
	if err := r.dbFrom(ctx).Where("gateway_txn_id = ?", txnID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByGatewayTxnIDLocked reads the payout under SELECT ... FOR UPDATE,
// serializing concurrent webhook deliveries for the same transaction. Only
// meaningful inside a transaction carried on ctx.
func (r *PayoutRepository) GetByGatewayTxnIDLocked(ctx context.Context, txnID string) (*models.Payout, error) {
	var p models.Payout
	err := r.dbFrom(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_txn_id = ?", txnID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) Update(ctx context.Context, p *models.Payout) error {
	return r.dbFrom(ctx).Save(p).Error
}

func (r *PayoutRepository) AppendEvent(ctx context.Context, e *models.PayoutEvent) error {
	return r.dbFrom(ctx).Create(e).Error
}

func (r *PayoutRepository) ListByHost(ctx context.Context, hostID uint) ([]models.Payout, error) {
	var out []models.Payout
	err := r.dbFrom(ctx).Where("host_id = ?", hostID).Order("id DESC").Find(&out).Error
	return out, err
}

func (r *PayoutRepository) ListEvents(ctx context.Context, payoutID uint) ([]models.PayoutEvent, error) {
	var out []models.PayoutEvent
	err := r.dbFrom(ctx).Where("payout_id = ?", payoutID).Order("id").Find(&out).Error
	return out, err
}
