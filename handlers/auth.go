package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"milk-delivery-api/middleware"
	"milk-delivery-api/models"
	"milk-delivery-api/services"
)

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role" binding:"required,role"`
	Phone    string      `json:"phone"`
	Address  string      `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// Me returns the authenticated user's profile
func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.MustIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// VerifyIdentity rejects tokens of deleted users; used as an AuthRequired check.
func (h *Handler) VerifyIdentity(ctx context.Context, id models.Identity) error {
	return h.auth.Verify(ctx, id)
}
