package models

import (
	"time"

	"gorm.io/gorm"
)

type Wallet struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	HostID       uint           `gorm:"uniqueIndex;not null" json:"host_id"`
	BalanceCents int64          `gorm:"not null;default:0" json:"balance_cents"`
	Currency     string         `gorm:"size:3;default:'USD'" json:"currency"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Host User `gorm:"foreignKey:HostID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction records credits/debits for wallet history
// (earnings recognition, payout debits, payout reversals).
type WalletTransaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	HostID      uint           `gorm:"not null;index" json:"host_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"` // positive = credit, negative = debit
	Type        string         `gorm:"size:30;not null;index" json:"type"`
	Reference   string         `gorm:"size:128" json:"reference"` // e.g. booking reference, payout idempotency key
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Host User `gorm:"foreignKey:HostID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
