package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Payout struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	HostID         uint    `gorm:"not null;index" json:"host_id"`
	AmountCents    int64   `gorm:"not null" json:"amount_cents"`
	Status         string  `gorm:"size:20;not null;index" json:"status"` // PENDING, PROCESSING, SUCCESS, FAILED
	IdempotencyKey string  `gorm:"size:64;uniqueIndex;not null" json:"idempotency_key"`
	GatewayTxnID   *string `gorm:"size:128;uniqueIndex" json:"gateway_txn_id"`

	// Raw passthrough from the disbursement gateway, used for duplicate
	// detection together with LastEventAt.
	GatewayStatus            string     `gorm:"size:64" json:"gateway_status"`
	GatewayStatusCode        string     `gorm:"size:32" json:"gateway_status_code"`
	GatewayStatusDescription string     `gorm:"size:255" json:"gateway_status_description"`
	LastEventAt              *time.Time `json:"last_event_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Host   User          `gorm:"foreignKey:HostID" json:"-"`
	Events []PayoutEvent `gorm:"foreignKey:PayoutID" json:"events,omitempty"`
}

func (Payout) TableName() string {
	return "payouts"
}

// PayoutEvent is one row of the append-only audit trail for a payout.
type PayoutEvent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	PayoutID      uint           `gorm:"not null;index" json:"payout_id"`
	Status        string         `gorm:"size:20;not null" json:"status"`
	GatewayStatus string         `gorm:"size:64" json:"gateway_status"`
	Message       string         `gorm:"size:255" json:"message"`
	Source        string         `gorm:"size:20;not null" json:"source"` // api | webhook
	Payload       datatypes.JSON `json:"payload,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (PayoutEvent) TableName() string {
	return "payout_events"
}
