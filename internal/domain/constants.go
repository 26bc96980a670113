package domain

import "strings"

const (
	RoleGuest = "GUEST"
	RoleHost  = "HOST"
	RoleAdmin = "ADMIN"
)

const (
	BookingPendingPayment = "PENDING_PAYMENT"
	BookingConfirmed      = "CONFIRMED"
	BookingCancelled      = "CANCELLED"
)

const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

const (
	PayoutPending    = "PENDING"
	PayoutProcessing = "PROCESSING"
	PayoutSuccess    = "SUCCESS"
	PayoutFailed     = "FAILED"
)

const (
	WalletTxTypeEarning        = "EARNING"
	WalletTxTypePayout         = "PAYOUT"
	WalletTxTypePayoutReversal = "PAYOUT_REVERSAL"
)

const (
	NotificationBookingConfirmed = "BOOKING_CONFIRMED"
	NotificationBookingCancelled = "BOOKING_CANCELLED"
	NotificationPayoutSettled    = "PAYOUT_SETTLED"
)

// CancellationWindowHours is the minimum lead time before check-in for a
// guest or admin cancellation.
const CancellationWindowHours = 48

// PayoutTerminal reports whether the reconciler may never move the payout again.
func PayoutTerminal(status string) bool {
	return status == PayoutSuccess || status == PayoutFailed
}

// MapDisbursementStatus maps the gateway's raw disbursement status to our
// payout status. The raw vocabulary is owned by the gateway; anything outside
// this table is unknown and must not move the payout.
func MapDisbursementStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return PayoutPending, true
	case "processing", "queued", "holding":
		return PayoutProcessing, true
	case "successful", "success", "completed":
		return PayoutSuccess, true
	case "failed", "rejected", "cancelled", "returned":
		return PayoutFailed, true
	default:
		return "", false
	}
}
