package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"milk-delivery-api/services"
)

type CreateRouteRequest struct {
	Name     string   `json:"name" binding:"required"`
	Areas    []string `json:"areas"`
	WorkerID string   `json:"worker_id"`
}

type UpdateRouteRequest struct {
	Name  *string   `json:"name" binding:"omitempty,min=1"`
	Areas *[]string `json:"areas"`
}

// AssignWorkerRequest sets the route's worker; null or "" clears it.
type AssignWorkerRequest struct {
	WorkerID *string `json:"worker_id"`
}

func (h *Handler) ListRoutes(c *gin.Context) {
	routes, err := h.routes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(routes), "routes": routes})
}

func (h *Handler) CreateRoute(c *gin.Context) {
	var req CreateRouteRequest
	if !bindJSON(c, &req) {
		return
	}
	route, err := h.routes.Create(c.Request.Context(), services.RouteInput{
		Name:     req.Name,
		Areas:    req.Areas,
		WorkerID: req.WorkerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Route created", "route": route})
}

func (h *Handler) UpdateRoute(c *gin.Context) {
	var req UpdateRouteRequest
	if !bindJSON(c, &req) {
		return
	}
	route, err := h.routes.Update(c.Request.Context(), c.Param("id"), services.RoutePatch{
		Name:  req.Name,
		Areas: req.Areas,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route updated", "route": route})
}

// AssignWorker puts a worker on a route and hands them its pending bookings
func (h *Handler) AssignWorker(c *gin.Context) {
	var req AssignWorkerRequest
	if !bindJSON(c, &req) {
		return
	}
	workerID := ""
	if req.WorkerID != nil {
		workerID = *req.WorkerID
	}
	route, err := h.routes.AssignWorker(c.Request.Context(), c.Param("id"), workerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route worker updated", "route": route})
}

func (h *Handler) DeleteRoute(c *gin.Context) {
	if err := h.routes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}
