package handler

import (
	"net/http"

	"staynest/internal/middleware"
	"staynest/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Initiate opens the checkout for a pending booking. Safe to retry: a
// pending payment is reused, not duplicated.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	actorID := middleware.GetUserID(c)
	res, err := h.svc.Initiate(c.Request.Context(), paramID(c, "id"), actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
