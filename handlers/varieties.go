package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"milk-delivery-api/services"
)

type CreateVarietyRequest struct {
	Name          string  `json:"name" binding:"required"`
	Color         string  `json:"color" binding:"required"`
	PricePerLiter float64 `json:"price_per_liter" binding:"required,gt=0"`
	Stock         int     `json:"stock" binding:"min=0"`
	Description   string  `json:"description"`
}

type UpdateVarietyRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1"`
	Color         *string  `json:"color" binding:"omitempty,min=1"`
	PricePerLiter *float64 `json:"price_per_liter" binding:"omitempty,gt=0"`
	Stock         *int     `json:"stock" binding:"omitempty,min=0"`
	Description   *string  `json:"description"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ListVarieties returns the full milk catalogue (public)
func (h *Handler) ListVarieties(c *gin.Context) {
	varieties, err := h.inventory.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(varieties), "varieties": varieties})
}

// CreateVariety adds a milk variety (admin only)
func (h *Handler) CreateVariety(c *gin.Context) {
	var req CreateVarietyRequest
	if !bindJSON(c, &req) {
		return
	}
	variety, err := h.inventory.Create(c.Request.Context(), services.VarietyInput{
		Name:          req.Name,
		Color:         req.Color,
		PricePerLiter: req.PricePerLiter,
		Stock:         req.Stock,
		Description:   req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Milk variety created", "variety": variety})
}

func (h *Handler) UpdateVariety(c *gin.Context) {
	var req UpdateVarietyRequest
	if !bindJSON(c, &req) {
		return
	}
	variety, err := h.inventory.Update(c.Request.Context(), c.Param("id"), services.VarietyPatch{
		Name:          req.Name,
		Color:         req.Color,
		PricePerLiter: req.PricePerLiter,
		Stock:         req.Stock,
		Description:   req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Milk variety updated", "variety": variety})
}

func (h *Handler) DeleteVariety(c *gin.Context) {
	if err := h.inventory.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Milk variety deleted"})
}

// AdjustStock adds or removes litres; stock never goes below zero
func (h *Handler) AdjustStock(c *gin.Context) {
	var req AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}
	variety, err := h.inventory.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated", "variety": variety})
}

// InventorySummary reports stock totals and low-stock varieties
func (h *Handler) InventorySummary(c *gin.Context) {
	summary, err := h.inventory.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
