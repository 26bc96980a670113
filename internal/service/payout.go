package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"staynest/internal/domain"
	"staynest/internal/models"
	"staynest/pkg/gateway"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PayoutService admits host withdrawal requests and reconciles the
// disbursement gateway's asynchronous status feed. The gateway is the sole
// source of truth for payout status after creation; delivery is
// at-least-once and possibly out of order.
type PayoutService struct {
	payouts  PayoutStore
	wallet   WalletStore
	provider gateway.DisbursementProvider
	tx       TxRunner
	notify   Notifier
}

func NewPayoutService(payouts PayoutStore, wallet WalletStore, provider gateway.DisbursementProvider, tx TxRunner, notify Notifier) *PayoutService {
	return &PayoutService{
		payouts:  payouts,
		wallet:   wallet,
		provider: provider,
		tx:       tx,
		notify:   notify,
	}
}

// Request reserves the amount on the host wallet, instructs the gateway and
// persists the payout as PENDING. The reservation is an atomic conditional
// decrement; when the gateway call or the persist fails the reservation is
// rolled back before returning.
func (s *PayoutService) Request(ctx context.Context, hostID uint, amountCents int64, destination string) (*models.Payout, error) {
	if amountCents <= 0 {
		return nil, domain.Validation("payout amount must be positive")
	}
	w, err := s.wallet.GetOrCreate(ctx, hostID)
	if err != nil {
		return nil, err
	}
	ok, err := s.wallet.Reserve(ctx, hostID, amountCents)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.PolicyError{Msg: "insufficient available balance"}
	}

	idemKey := fmt.Sprintf("po-%s", uuid.New().String())
	resp, err := s.provider.CreateDisbursement(ctx, gateway.DisbursementRequest{
		AmountCents: amountCents,
		Currency:    w.Currency,
		Reference:   idemKey,
		Destination: destination,
	})
	if err != nil {
		if rerr := s.wallet.Reverse(ctx, hostID, amountCents); rerr != nil {
			log.Printf("[payout] ALERT reservation rollback failed host=%d amount=%d: %v", hostID, amountCents, rerr)
		}
		return nil, &domain.UpstreamError{Op: "create disbursement", Err: err}
	}

	p := &models.Payout{
		HostID:         hostID,
		AmountCents:    amountCents,
		Status:         domain.PayoutPending,
		IdempotencyKey: idemKey,
		GatewayTxnID:   &resp.TransactionID,
		GatewayStatus:  resp.Status,
	}
	if err := s.payouts.Create(ctx, p); err != nil {
		if rerr := s.wallet.Reverse(ctx, hostID, amountCents); rerr != nil {
			log.Printf("[payout] ALERT reservation rollback failed host=%d amount=%d: %v", hostID, amountCents, rerr)
		}
		return nil, err
	}
	_ = s.payouts.AppendEvent(ctx, &models.PayoutEvent{
		PayoutID:      p.ID,
		Status:        domain.PayoutPending,
		GatewayStatus: resp.Status,
		Message:       "payout requested",
		Source:        "api",
	})
	if err := s.wallet.RecordTransaction(ctx, hostID, -amountCents, domain.WalletTxTypePayout, idemKey); err != nil {
		log.Printf("[payout] debit tx record failed host=%d: %v", hostID, err)
	}
	return p, nil
}

// DisbursementEvent is the structurally validated webhook payload handed to
// the reconciler after signature verification.
type DisbursementEvent struct {
	TransactionID      string
	DisbursementStatus string
	StatusCode         string
	StatusDescription  string
	UpdatedAt          time.Time
	Raw                []byte
}

// HandleEvent reconciles one webhook event. Unknown transactions are a
// benign no-op (the payout may belong to another environment). A duplicate —
// same gateway status string and same event timestamp as last applied — is
// acknowledged without mutation, and terminal payouts never move again. The
// wallet reversal applies exactly once, on the first transition into FAILED,
// atomically with the payout update.
func (s *PayoutService) HandleEvent(ctx context.Context, evt DisbursementEvent) error {
	if _, err := s.payouts.GetByGatewayTxnID(ctx, evt.TransactionID); err != nil {
		if errors.Is(err, domain.ErrPayoutNotFound) {
			log.Printf("[payout] webhook for unknown transaction %s, ignoring", evt.TransactionID)
			return nil
		}
		return err
	}

	eventAt := evt.UpdatedAt
	var applied *models.Payout
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		// The duplicate and terminal checks run on a row-locked read, so
		// concurrently delivered copies of the same event serialize here and
		// the reversal below cannot double-apply.
		p, err := s.payouts.GetByGatewayTxnIDLocked(ctx, evt.TransactionID)
		if err != nil {
			return err
		}
		if evt.DisbursementStatus == p.GatewayStatus && p.LastEventAt != nil && evt.UpdatedAt.Equal(*p.LastEventAt) {
			log.Printf("[payout] duplicate event for payout %d (status=%s), ignoring", p.ID, evt.DisbursementStatus)
			return nil
		}
		if domain.PayoutTerminal(p.Status) {
			log.Printf("[payout] payout %d already terminal (%s), ignoring %s", p.ID, p.Status, evt.DisbursementStatus)
			return nil
		}

		prev := p.Status
		next, known := domain.MapDisbursementStatus(evt.DisbursementStatus)
		if !known {
			// Record the event for the audit trail but do not move the
			// payout on a vocabulary we do not understand.
			log.Printf("[payout] unknown disbursement status %q for payout %d", evt.DisbursementStatus, p.ID)
			next = prev
		}

		p.Status = next
		p.GatewayStatus = evt.DisbursementStatus
		p.GatewayStatusCode = evt.StatusCode
		p.GatewayStatusDescription = evt.StatusDescription
		p.LastEventAt = &eventAt
		if err := s.payouts.Update(ctx, p); err != nil {
			return err
		}
		if err := s.payouts.AppendEvent(ctx, &models.PayoutEvent{
			PayoutID:      p.ID,
			Status:        next,
			GatewayStatus: evt.DisbursementStatus,
			Message:       evt.StatusDescription,
			Source:        "webhook",
			Payload:       datatypes.JSON(evt.Raw),
		}); err != nil {
			return err
		}
		if next == domain.PayoutFailed && prev != domain.PayoutFailed {
			if err := s.wallet.Reverse(ctx, p.HostID, p.AmountCents); err != nil {
				return err
			}
			if err := s.wallet.RecordTransaction(ctx, p.HostID, p.AmountCents, domain.WalletTxTypePayoutReversal, p.IdempotencyKey); err != nil {
				return err
			}
		}
		applied = p
		return nil
	})
	if err != nil || applied == nil {
		return err
	}

	switch applied.Status {
	case domain.PayoutSuccess:
		s.notify.Notify(ctx, applied.HostID, domain.NotificationPayoutSettled,
			"Payout completed", fmt.Sprintf("Your payout of %d cents was sent.", applied.AmountCents))
	case domain.PayoutFailed:
		s.notify.Notify(ctx, applied.HostID, domain.NotificationPayoutSettled,
			"Payout failed", fmt.Sprintf("Your payout of %d cents failed and was returned to your wallet.", applied.AmountCents))
	}
	return nil
}
