package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"milk-delivery-api/models"
	"milk-delivery-api/statemachine"
)

// Init seeds the default admin and milk varieties; repeated calls change nothing
func (h *Handler) Init(c *gin.Context) {
	res, err := h.seed.Init(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Database initialized successfully",
		"admin_created":     res.AdminCreated,
		"varieties_created": res.VarietiesCreated,
	})
}

// GetStateMachineInfo returns the booking state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	terminal := []models.BookingStatus{}
	for _, s := range []models.BookingStatus{models.StatusPending, models.StatusDelivered, models.StatusMissed, models.StatusCancelled} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"initial_state":   models.StatusPending,
		"terminal_states": terminal,
		"description":     "Milk delivery booking lifecycle",
	})
}
