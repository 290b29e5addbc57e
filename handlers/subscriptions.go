package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"milk-delivery-api/middleware"
	"milk-delivery-api/services"
)

type CreateSubscriptionRequest struct {
	CustomerID   string `json:"customer_id"`
	MilkType     string `json:"milk_type" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
	StartDate    string `json:"start_date" binding:"required,datetime=2006-01-02"`
	DurationDays int    `json:"duration_days" binding:"omitempty,min=1,max=365"`
}

type UpdateSubscriptionRequest struct {
	MilkType    *string   `json:"milk_type" binding:"omitempty,min=1"`
	Quantity    *int      `json:"quantity" binding:"omitempty,min=1"`
	IsActive    *bool     `json:"is_active"`
	PausedDates *[]string `json:"paused_dates" binding:"omitempty,dive,datetime=2006-01-02"`
}

func (h *Handler) ListSubscriptions(c *gin.Context) {
	subs, err := h.subscriptions.List(c.Request.Context(), middleware.MustIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(subs), "subscriptions": subs})
}

// CreateSubscription starts a recurring daily delivery
func (h *Handler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subscriptions.Create(c.Request.Context(), middleware.MustIdentity(c), services.CreateSubscriptionInput{
		CustomerID:   req.CustomerID,
		MilkType:     req.MilkType,
		Quantity:     req.Quantity,
		StartDate:    req.StartDate,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscription created", "subscription": sub})
}

func (h *Handler) UpdateSubscription(c *gin.Context) {
	var req UpdateSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subscriptions.Update(c.Request.Context(), middleware.MustIdentity(c), c.Param("id"), services.SubscriptionPatch{
		MilkType:    req.MilkType,
		Quantity:    req.Quantity,
		IsActive:    req.IsActive,
		PausedDates: req.PausedDates,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription updated", "subscription": sub})
}

// ToggleSubscription pauses or resumes a subscription
func (h *Handler) ToggleSubscription(c *gin.Context) {
	sub, err := h.subscriptions.Toggle(c.Request.Context(), middleware.MustIdentity(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription toggled", "subscription": sub})
}

func (h *Handler) DeleteSubscription(c *gin.Context) {
	if err := h.subscriptions.Delete(c.Request.Context(), middleware.MustIdentity(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted"})
}
