package handler

import (
	"errors"
	"net/http"

	"staynest/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		policy     *domain.PolicyError
		upstream   *domain.UpstreamError
		integrity  *domain.IntegrityError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Reason})
	case errors.As(err, &policy):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": policy.Msg})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable, please retry"})
	case errors.As(err, &integrity):
		c.JSON(http.StatusConflict, gin.H{"error": integrity.Msg})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrPayoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
