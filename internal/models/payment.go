package models

import (
	"time"

	"gorm.io/gorm"
)

type Payment struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	BookingID          uint           `gorm:"not null;index" json:"booking_id"`
	GuestID            uint           `gorm:"not null;index" json:"guest_id"`
	AmountCents        int64          `gorm:"not null" json:"amount_cents"`
	Currency           string         `gorm:"size:3;default:'USD'" json:"currency"`
	Status             string         `gorm:"size:20;not null;index" json:"status"` // PENDING, PAID, FAILED, REFUNDED
	GatewayIntentionID string         `gorm:"size:128;uniqueIndex;not null" json:"gateway_intention_id"`
	GatewayTxnID       *string        `gorm:"size:128;uniqueIndex" json:"gateway_txn_id"`
	IdempotencyKey     string         `gorm:"size:64;uniqueIndex;not null" json:"-"`
	CheckoutURL        string         `gorm:"size:512" json:"checkout_url"`
	PaidAt             *time.Time     `json:"paid_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
