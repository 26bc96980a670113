package handler

import (
	"net/http"
	"strconv"
	"time"

	"staynest/internal/middleware"
	"staynest/internal/models"
	"staynest/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListingHandler is the thin collaborator surface around listings: the core
// only needs creation, the accepting-bookings flag and host calendar blocks.
type ListingHandler struct {
	listings *repository.ListingRepository
}

func NewListingHandler(listings *repository.ListingRepository) *ListingHandler {
	return &ListingHandler{listings: listings}
}

type CreateListingRequest struct {
	Title             string `json:"title" binding:"required,min=3,max=255"`
	Description       string `json:"description"`
	NightlyPriceCents int64  `json:"nightly_price_cents" binding:"required,min=1"`
	Currency          string `json:"currency" binding:"omitempty,len=3"`
	Capacity          int    `json:"capacity" binding:"required,min=1"`
}

func (h *ListingHandler) Create(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	l := &models.Listing{
		HostID:            hostID,
		Title:             req.Title,
		Description:       req.Description,
		NightlyPriceCents: req.NightlyPriceCents,
		Currency:          currency,
		Capacity:          req.Capacity,
		AcceptingBookings: true,
	}
	if err := h.listings.Create(c.Request.Context(), l); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create listing"})
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *ListingHandler) Get(c *gin.Context) {
	id := paramID(c, "id")
	l, err := h.listings.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *ListingHandler) ListMine(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	out, err := h.listings.ListByHost(c.Request.Context(), hostID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": out})
}

func (h *ListingHandler) SetAccepting(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	var req struct {
		AcceptingBookings *bool `json:"accepting_bookings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.listings.GetByID(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if l.HostID != hostID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}
	l.AcceptingBookings = *req.AcceptingBookings
	if err := h.listings.Update(c.Request.Context(), l); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update listing"})
		return
	}
	c.JSON(http.StatusOK, l)
}

type BlockDatesRequest struct {
	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD, inclusive
	EndDate   string `json:"end_date" binding:"required"`   // YYYY-MM-DD, exclusive
	Note      string `json:"note"`
}

func (h *ListingHandler) BlockDates(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	var req BlockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err1 := time.Parse("2006-01-02", req.StartDate)
	end, err2 := time.Parse("2006-01-02", req.EndDate)
	if err1 != nil || err2 != nil || !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range (use YYYY-MM-DD, end after start)"})
		return
	}
	l, err := h.listings.GetByID(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if l.HostID != hostID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}
	b := &models.BlockedDate{ListingID: l.ID, StartDate: start, EndDate: end, Note: req.Note}
	if err := h.listings.CreateBlockedDate(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to block dates"})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *ListingHandler) UnblockDates(c *gin.Context) {
	hostID := middleware.GetUserID(c)
	l, err := h.listings.GetByID(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if l.HostID != hostID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return
	}
	if err := h.listings.DeleteBlockedDate(c.Request.Context(), l.ID, paramID(c, "block_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unblock dates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ListingHandler) ListBlockedDates(c *gin.Context) {
	out, err := h.listings.ListBlockedDates(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list blocked dates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked_dates": out})
}

func paramID(c *gin.Context, name string) uint {
	n, _ := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(n)
}
