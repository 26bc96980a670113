package handler

import (
	"net/http"

	"staynest/internal/middleware"
	"staynest/internal/repository"
	"staynest/internal/service"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	svc     *service.PayoutService
	payouts *repository.PayoutRepository
}

func NewPayoutHandler(svc *service.PayoutService, payouts *repository.PayoutRepository) *PayoutHandler {
	return &PayoutHandler{svc: svc, payouts: payouts}
}

type CreatePayoutRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required,min=1"`
	Destination string `json:"destination" binding:"required"`
}

// Create initiates a withdrawal to the host's payout destination. Host only.
func (h *PayoutHandler) Create(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Request(c.Request.Context(), hostID, req.AmountCents, req.Destination)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":              p.ID,
		"idempotency_key": p.IdempotencyKey,
		"amount_cents":    p.AmountCents,
		"status":          p.Status,
	})
}

func (h *PayoutHandler) ListMine(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	out, err := h.payouts.ListByHost(c.Request.Context(), hostID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payouts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": out})
}

func (h *PayoutHandler) ListEvents(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	p, err := h.payouts.GetByID(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if p.HostID != hostID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your payout"})
		return
	}
	events, err := h.payouts.ListEvents(c.Request.Context(), p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
