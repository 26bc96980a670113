package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"staynest/config"
	"staynest/internal/domain"
	"staynest/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentWebhookHandler consumes the collection gateway's payment-success
// callback: mark the payment paid, then run booking confirmation (final
// availability guard, compensating refund on conflict).
type PaymentWebhookHandler struct {
	payments *service.PaymentService
	bookings *service.BookingService
	cfg      *config.Config
}

func NewPaymentWebhookHandler(payments *service.PaymentService, bookings *service.BookingService, cfg *config.Config) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{payments: payments, bookings: bookings, cfg: cfg}
}

type paymentCallback struct {
	IntentionID   string `json:"intention_id"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.Gateway.WebhookSecret != "" {
		sig := c.GetHeader("X-Webhook-Signature")
		if !verifySignature(h.cfg.Gateway.WebhookSecret, body, sig) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}
	var payload paymentCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.IntentionID == "" || payload.TransactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "intention_id and transaction_id required"})
		return
	}
	if payload.Status != "paid" && payload.Status != "success" {
		// Failed/expired attempts need no state change: the pending payment
		// stays reusable for a retried checkout.
		log.Printf("[payment callback] intention=%s status=%s, no action", payload.IntentionID, payload.Status)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	p, err := h.payments.MarkPaid(c.Request.Context(), payload.IntentionID, payload.TransactionID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			log.Printf("[payment callback] unknown intention %s, ignoring", payload.IntentionID)
		} else {
			log.Printf("[payment callback] mark paid failed intention=%s: %v", payload.IntentionID, err)
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err := h.bookings.Confirm(c.Request.Context(), p.BookingID); err != nil {
		// Conflicts trigger the compensating refund inside Confirm. Either
		// way the gateway gets a 200; retrying cannot repair this here.
		log.Printf("[payment callback] confirm failed booking=%d: %v", p.BookingID, err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// verifySignature checks an HMAC-SHA256 hex signature over the raw body.
func verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
