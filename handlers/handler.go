package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"milk-delivery-api/models"
	"milk-delivery-api/services"
)

// Options tune the handler set; zero values pick production defaults.
type Options struct {
	AdminEmail    string
	AdminPassword string
	// PasswordCost overrides the bcrypt cost, tests use bcrypt.MinCost.
	PasswordCost int
	Now          func() time.Time
}

// Handler serves every API endpoint over the service layer.
type Handler struct {
	auth          *services.AuthService
	bookings      *services.BookingService
	subscriptions *services.SubscriptionService
	inventory     *services.InventoryService
	routes        *services.RouteService
	users         *services.UserService
	analytics     *services.AnalyticsService
	seed          *services.SeedService
	now           func() time.Time
}

func New(db *gorm.DB, tokens services.TokenIssuer, opts Options) *Handler {
	inventory := services.NewInventoryService(db)
	h := &Handler{
		auth:          services.NewAuthService(db, tokens),
		bookings:      services.NewBookingService(db, inventory),
		subscriptions: services.NewSubscriptionService(db, inventory),
		inventory:     inventory,
		routes:        services.NewRouteService(db),
		users:         services.NewUserService(db),
		analytics:     services.NewAnalyticsService(db, inventory),
		seed:          services.NewSeedService(db, opts.AdminEmail, opts.AdminPassword),
		now:           opts.Now,
	}
	if opts.PasswordCost > 0 {
		h.auth.WithCost(opts.PasswordCost)
		h.seed.WithCost(opts.PasswordCost)
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

var registerOnce sync.Once

// RegisterValidators adds the enum validators used in request binding tags.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("bookingstatus", func(fl validator.FieldLevel) bool {
			return models.BookingStatus(fl.Field().String()).Valid()
		})
	})
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicateEmail), errors.Is(err, services.ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
