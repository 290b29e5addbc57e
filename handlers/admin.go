package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"milk-delivery-api/middleware"
	"milk-delivery-api/models"
	"milk-delivery-api/services"
)

type UpdateUserRequest struct {
	Name    *string      `json:"name" binding:"omitempty,min=1"`
	Phone   *string      `json:"phone"`
	Address *string      `json:"address"`
	Role    *models.Role `json:"role"`
}

// AssignRouteRequest moves a customer onto a route; null or "" clears it.
type AssignRouteRequest struct {
	RouteID *string `json:"route_id"`
}

// AdminListCustomers returns all customers (admin only)
func (h *Handler) AdminListCustomers(c *gin.Context) {
	h.listUsers(c, models.RoleCustomer, "customers")
}

// AdminListWorkers returns all workers (admin only)
func (h *Handler) AdminListWorkers(c *gin.Context) {
	h.listUsers(c, models.RoleWorker, "workers")
}

func (h *Handler) listUsers(c *gin.Context, role models.Role, key string) {
	users, err := h.users.ListByRole(c.Request.Context(), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), key: users})
}

// AdminUpdateUser edits profile fields; the role is fixed at registration
func (h *Handler) AdminUpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Role != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role cannot be changed"})
		return
	}
	user, err := h.users.Update(c.Request.Context(), c.Param("id"), services.UserPatch{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user": user})
}

func (h *Handler) AdminAssignCustomerRoute(c *gin.Context) {
	var req AssignRouteRequest
	if !bindJSON(c, &req) {
		return
	}
	routeID := ""
	if req.RouteID != nil {
		routeID = *req.RouteID
	}
	user, err := h.users.AssignRoute(c.Request.Context(), c.Param("id"), routeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer route updated", "user": user})
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.MustIdentity(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// AnalyticsOverview aggregates counts and this month's delivered revenue
func (h *Handler) AnalyticsOverview(c *gin.Context) {
	overview, err := h.analytics.Overview(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
