package models

import (
	"time"

	"gorm.io/gorm"
)

type Listing struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	HostID            uint           `gorm:"not null;index" json:"host_id"`
	Title             string         `gorm:"size:255;not null" json:"title"`
	Description       string         `gorm:"type:text" json:"description"`
	NightlyPriceCents int64          `gorm:"not null" json:"nightly_price_cents"`
	Currency          string         `gorm:"size:3;default:'USD'" json:"currency"`
	Capacity          int            `gorm:"not null;default:1" json:"capacity"`
	AcceptingBookings bool           `gorm:"not null;default:true" json:"accepting_bookings"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Host User `gorm:"foreignKey:HostID" json:"-"`
}

func (Listing) TableName() string {
	return "listings"
}

// BlockedDate is a host-declared unavailability range [start_date, end_date)
// for a listing. Consulted read-only by the availability check.
type BlockedDate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"not null;index" json:"listing_id"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Note      string    `gorm:"size:255" json:"note"`
	CreatedAt time.Time `json:"created_at"`

	Listing Listing `gorm:"foreignKey:ListingID" json:"-"`
}

func (BlockedDate) TableName() string {
	return "blocked_dates"
}
