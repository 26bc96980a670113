package handler

import (
	"net/http"
	"time"

	"staynest/internal/middleware"
	"staynest/internal/repository"
	"staynest/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	svc      *service.BookingService
	bookings *repository.BookingRepository
	guard    *service.AvailabilityService
}

func NewBookingHandler(svc *service.BookingService, bookings *repository.BookingRepository, guard *service.AvailabilityService) *BookingHandler {
	return &BookingHandler{svc: svc, bookings: bookings, guard: guard}
}

type CreateBookingRequest struct {
	ListingID uint   `json:"listing_id" binding:"required"`
	CheckIn   string `json:"check_in" binding:"required"`  // YYYY-MM-DD
	CheckOut  string `json:"check_out" binding:"required"` // YYYY-MM-DD
	Guests    int    `json:"guests" binding:"required,min=1"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	guestID := middleware.GetUserID(c)
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, err1 := time.Parse("2006-01-02", req.CheckIn)
	checkOut, err2 := time.Parse("2006-01-02", req.CheckOut)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dates (use YYYY-MM-DD)"})
		return
	}
	b, err := h.svc.Create(c.Request.Context(), guestID, req.ListingID, checkIn, checkOut, req.Guests)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// CheckAvailability is a read-only preview for the client; the decisive
// check still happens at confirmation.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	checkIn, err1 := time.Parse("2006-01-02", c.Query("check_in"))
	checkOut, err2 := time.Parse("2006-01-02", c.Query("check_out"))
	if err1 != nil || err2 != nil || !checkOut.After(checkIn) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dates (use YYYY-MM-DD, check_out after check_in)"})
		return
	}
	available, reason, err := h.guard.IsAvailable(c.Request.Context(), paramID(c, "id"), checkIn, checkOut, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "availability check failed"})
		return
	}
	resp := gin.H{"available": available}
	if reason != "" {
		resp["reason"] = reason
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	guestID := middleware.GetUserID(c)
	out, err := h.bookings.ListByGuest(c.Request.Context(), guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	actorID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	if err := h.svc.Cancel(c.Request.Context(), paramID(c, "id"), actorID, role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// Recognize credits the host wallet for a completed stay. Admin only.
func (h *BookingHandler) Recognize(c *gin.Context) {
	if err := h.svc.RecognizeEarnings(c.Request.Context(), paramID(c, "id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recognized"})
}
