package handler

import (
	"net/http"

	"staynest/internal/middleware"
	"staynest/internal/repository"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	wallets *repository.WalletRepository
}

func NewWalletHandler(wallets *repository.WalletRepository) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// GetBalance returns the host's wallet. The balance already excludes
// reserved payout amounts; the in-flight sum is reported alongside it.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	w, err := h.wallets.GetOrCreate(c.Request.Context(), hostID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	pending, err := h.wallets.PendingPayoutSum(c.Request.Context(), hostID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_cents":         w.BalanceCents,
		"pending_payouts_cents": pending,
		"currency":              w.Currency,
	})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	out, err := h.wallets.ListTransactions(c.Request.Context(), hostID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}
