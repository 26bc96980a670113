package repository

import (
	"context"
	"errors"

	"staynest/internal/database"
	"staynest/internal/domain"
	"staynest/internal/models"

	"gorm.io/gorm"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) dbFrom(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *WalletRepository) GetByHostID(ctx context.Context, hostID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.dbFrom(ctx).Where("host_id = ?", hostID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(ctx context.Context, hostID uint) (*models.Wallet, error) {
	w, err := r.GetByHostID(ctx, hostID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{HostID: hostID, BalanceCents: 0, Currency: "USD"}
	if err := r.dbFrom(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// Credit adds earned revenue to the host balance.
func (r *WalletRepository) Credit(ctx context.Context, hostID uint, amountCents int64) error {
	if _, err := r.GetOrCreate(ctx, hostID); err != nil {
		return err
	}
	return r.dbFrom(ctx).Model(&models.Wallet{}).
		Where("host_id = ?", hostID).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", amountCents)).Error
}

// Reserve debits the balance iff the resulting balance stays non-negative.
// A single conditional UPDATE so concurrent payout requests cannot interleave
// a read-modify-write; the RowsAffected count is the success signal.
func (r *WalletRepository) Reserve(ctx context.Context, hostID uint, amountCents int64) (bool, error) {
	res := r.dbFrom(ctx).Model(&models.Wallet{}).
		Where("host_id = ? AND balance_cents >= ?", hostID, amountCents).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Reverse credits a reserved amount back. Called exactly once per payout,
// the first time it transitions into FAILED; the reconciler guards the
// once-only property.
func (r *WalletRepository) Reverse(ctx context.Context, hostID uint, amountCents int64) error {
	return r.dbFrom(ctx).Model(&models.Wallet{}).
		Where("host_id = ?", hostID).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", amountCents)).Error
}

func (r *WalletRepository) RecordTransaction(ctx context.Context, hostID uint, amountCents int64, txType, reference string) error {
	return r.dbFrom(ctx).Create(&models.WalletTransaction{
		HostID:      hostID,
		AmountCents: amountCents,
		Type:        txType,
		Reference:   reference,
	}).Error
}

func (r *WalletRepository) ListTransactions(ctx context.Context, hostID uint) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	err := r.dbFrom(ctx).Where("host_id = ?", hostID).Order("id DESC").Limit(100).Find(&out).Error
	return out, err
}

// PendingPayoutSum returns the total of payouts still in flight for a host,
// reported alongside the balance on the wallet endpoint.
func (r *WalletRepository) PendingPayoutSum(ctx context.Context, hostID uint) (int64, error) {
	var sum int64
	err := r.dbFrom(ctx).Model(&models.Payout{}).
		Where("host_id = ? AND status IN ?", hostID, []string{domain.PayoutPending, domain.PayoutProcessing}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&sum).Error
	return sum, err
}
