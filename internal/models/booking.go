package models

import (
	"time"

	"gorm.io/gorm"
)

type Booking struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Reference       string         `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	ListingID       uint           `gorm:"not null;index" json:"listing_id"`
	GuestID         uint           `gorm:"not null;index" json:"guest_id"`
	CheckIn         time.Time      `gorm:"not null;index" json:"check_in"`
	CheckOut        time.Time      `gorm:"not null" json:"check_out"`
	Guests          int            `gorm:"not null;default:1" json:"guests"`
	TotalPriceCents int64          `gorm:"not null" json:"total_price_cents"`
	Status          string         `gorm:"size:20;not null;index" json:"status"`         // PENDING_PAYMENT, CONFIRMED, CANCELLED
	PaymentStatus   string         `gorm:"size:20;not null;index" json:"payment_status"` // PENDING, PAID, FAILED, REFUNDED
	PaymentID       *uint          `gorm:"index" json:"payment_id"`
	// Set once when the stay is recognized as earned revenue; guards the
	// wallet credit against double recognition.
	EarningsRecognizedAt *time.Time `json:"earnings_recognized_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Listing Listing `gorm:"foreignKey:ListingID" json:"-"`
	Guest   User    `gorm:"foreignKey:GuestID" json:"-"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Nights returns the stay length for the half-open [CheckIn, CheckOut) range,
// rounding partial days up.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

func NightsBetween(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}
