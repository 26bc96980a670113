package gateway

import "context"

// IntentionRequest opens a payment intention with the collection gateway.
type IntentionRequest struct {
	AmountCents   int64
	Currency      string
	SpecialRef    string // our idempotency reference, echoed back by the gateway
	CustomerEmail string
	CustomerName  string
	Metadata      map[string]string
}

type IntentionResponse struct {
	IntentionID  string
	ClientSecret string
	CheckoutURL  string
}

// PaymentProvider collects guest money: one intention per checkout attempt,
// refunds against a settled transaction.
type PaymentProvider interface {
	CreateIntention(ctx context.Context, req IntentionRequest) (*IntentionResponse, error)
	RefundTransaction(ctx context.Context, transactionID string, amountCents int64) error
}

// DisbursementRequest asks the payout gateway to move money to a host.
type DisbursementRequest struct {
	AmountCents int64
	Currency    string
	Reference   string // our idempotency key
	Destination string // host's registered payout destination
}

type DisbursementResponse struct {
	TransactionID string
	Status        string
}

// DisbursementProvider initiates host payouts. Status updates arrive
// asynchronously on the webhook; the initiation response status is only a
// first snapshot.
type DisbursementProvider interface {
	CreateDisbursement(ctx context.Context, req DisbursementRequest) (*DisbursementResponse, error)
}
