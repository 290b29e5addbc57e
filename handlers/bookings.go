package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"milk-delivery-api/middleware"
	"milk-delivery-api/models"
	"milk-delivery-api/services"
	"milk-delivery-api/statemachine"
)

type CreateBookingRequest struct {
	CustomerID string `json:"customer_id"`
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
	MilkType   string `json:"milk_type" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	IsExtra    bool   `json:"is_extra"`
}

type UpdateBookingRequest struct {
	Date     *string               `json:"date" binding:"omitempty,datetime=2006-01-02"`
	MilkType *string               `json:"milk_type" binding:"omitempty,min=1"`
	Quantity *int                  `json:"quantity" binding:"omitempty,min=1"`
	IsExtra  *bool                 `json:"is_extra"`
	Status   *models.BookingStatus `json:"status" binding:"omitempty,bookingstatus"`
	WorkerID *string               `json:"worker_id"`
	RouteID  *string               `json:"route_id"`
}

type UpdateDeliveryStatusRequest struct {
	Status models.BookingStatus `json:"status" binding:"required,bookingstatus"`
}

// ListBookings returns the caller's bookings: own for customers, assigned for workers, all for admins
func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.bookings.List(c.Request.Context(), middleware.MustIdentity(c), services.BookingFilter{
		Date:   c.Query("date"),
		Status: models.BookingStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(bookings), "bookings": bookings})
}

// GetBooking returns a single booking visible to the caller
func (h *Handler) GetBooking(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), middleware.MustIdentity(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CreateBooking books a day's delivery
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), middleware.MustIdentity(c), services.CreateBookingInput{
		CustomerID: req.CustomerID,
		Date:       req.Date,
		MilkType:   req.MilkType,
		Quantity:   req.Quantity,
		IsExtra:    req.IsExtra,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created", "booking": booking})
}

// UpdateBooking applies a partial update within the caller's role limits
func (h *Handler) UpdateBooking(c *gin.Context) {
	var req UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.Update(c.Request.Context(), middleware.MustIdentity(c), c.Param("id"), services.BookingPatch{
		Date:     req.Date,
		MilkType: req.MilkType,
		Quantity: req.Quantity,
		IsExtra:  req.IsExtra,
		Status:   req.Status,
		WorkerID: req.WorkerID,
		RouteID:  req.RouteID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking updated", "booking": booking})
}

// UpdateDeliveryStatus handles the worker's delivered / missed marks
func (h *Handler) UpdateDeliveryStatus(c *gin.Context) {
	var req UpdateDeliveryStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.UpdateDeliveryStatus(c.Request.Context(), middleware.MustIdentity(c), c.Param("id"), req.Status)
	if errors.Is(err, services.ErrInvalidTransition) && booking != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    booking.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(booking.Status),
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery status updated",
		"booking": booking,
		"status":  booking.Status,
	})
}

// DeleteBooking removes a booking owned by the caller (or any booking for admins)
func (h *Handler) DeleteBooking(c *gin.Context) {
	if err := h.bookings.Delete(c.Request.Context(), middleware.MustIdentity(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

// DeliveryStats returns per-status counts for a day, defaulting to today
func (h *Handler) DeliveryStats(c *gin.Context) {
	date := c.DefaultQuery("date", h.now().Format(models.DateLayout))
	stats, err := h.analytics.DeliveryStats(c.Request.Context(), middleware.MustIdentity(c), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
