package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"staynest/config"
	"staynest/internal/service"

	"github.com/gin-gonic/gin"
)

// PayoutWebhookHandler consumes the disbursement gateway's status feed.
// Delivery is at-least-once and possibly out of order; only unauthenticated
// or malformed requests are rejected. Processing failures after that point
// are still acknowledged with a 200 so the gateway does not retry forever
// against a receiver-side problem — the failure is logged for follow-up.
type PayoutWebhookHandler struct {
	svc *service.PayoutService
	cfg *config.Config
}

func NewPayoutWebhookHandler(svc *service.PayoutService, cfg *config.Config) *PayoutWebhookHandler {
	return &PayoutWebhookHandler{svc: svc, cfg: cfg}
}

// DisbursementCallback is the webhook payload for a payout status change.
type DisbursementCallback struct {
	TransactionID      string `json:"transaction_id"`
	DisbursementStatus string `json:"disbursement_status"`
	StatusCode         string `json:"status_code"`
	StatusDescription  string `json:"status_description"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

func (h *PayoutWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	sig := c.GetHeader("X-Disbursement-Signature")
	if !verifySignature(h.cfg.Disbursement.WebhookSecret, body, sig) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	var payload DisbursementCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.TransactionID == "" || payload.DisbursementStatus == "" || payload.UpdatedAt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_id, disbursement_status and updated_at required"})
		return
	}
	updatedAt, err := parseEventTime(payload.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid updated_at"})
		return
	}

	evt := service.DisbursementEvent{
		TransactionID:      payload.TransactionID,
		DisbursementStatus: payload.DisbursementStatus,
		StatusCode:         payload.StatusCode,
		StatusDescription:  payload.StatusDescription,
		UpdatedAt:          updatedAt,
		Raw:                body,
	}
	if err := h.svc.HandleEvent(c.Request.Context(), evt); err != nil {
		log.Printf("[payout callback] reconcile failed txn=%s: %v", payload.TransactionID, err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func parseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
