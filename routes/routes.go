package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"milk-delivery-api/handlers"
	"milk-delivery-api/middleware"
	"milk-delivery-api/models"
)

// NewRouter builds the engine with logging, recovery and CORS, and registers every route.
func NewRouter(logger *slog.Logger, h *handlers.Handler, jwt *middleware.JWT) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Milk Delivery Management API",
			"version": "1.0.0",
		})
	})

	SetupRoutes(r, h, jwt)
	return r
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, jwt *middleware.JWT) {
	handlers.RegisterValidators()
	authRequired := jwt.AuthRequired(h.VerifyIdentity)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.GET("/milk-varieties", h.ListVarieties)
		public.GET("/state-machine", h.GetStateMachineInfo)
		public.POST("/init", h.Init)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(authRequired)
	{
		auth.GET("/auth/me", h.Me)
		auth.GET("/routes", h.ListRoutes)

		// Visibility is filtered per role inside the service
		auth.GET("/bookings", h.ListBookings)
		auth.POST("/bookings", h.CreateBooking)
		auth.GET("/bookings/:id", h.GetBooking)
		auth.PUT("/bookings/:id", h.UpdateBooking)
		auth.DELETE("/bookings/:id", h.DeleteBooking)
	}

	// ── Customer + admin routes ────────────────────────────────────
	subscriptions := r.Group("/api/subscriptions")
	subscriptions.Use(authRequired, middleware.RoleRequired(models.RoleCustomer, models.RoleAdmin))
	{
		subscriptions.GET("", h.ListSubscriptions)
		subscriptions.POST("", h.CreateSubscription)
		subscriptions.PUT("/:id", h.UpdateSubscription)
		subscriptions.PUT("/:id/toggle", h.ToggleSubscription)
		subscriptions.DELETE("/:id", h.DeleteSubscription)
	}

	// ── Worker + admin routes ──────────────────────────────────────
	delivery := r.Group("/api")
	delivery.Use(authRequired, middleware.RoleRequired(models.RoleWorker, models.RoleAdmin))
	{
		delivery.PUT("/bookings/:id/status", h.UpdateDeliveryStatus)
		delivery.GET("/deliveries/stats", h.DeliveryStats)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api")
	admin.Use(authRequired, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.POST("/milk-varieties", h.CreateVariety)
		admin.PUT("/milk-varieties/:id", h.UpdateVariety)
		admin.DELETE("/milk-varieties/:id", h.DeleteVariety)
		admin.PATCH("/milk-varieties/:id/stock", h.AdjustStock)
		admin.GET("/inventory/summary", h.InventorySummary)

		admin.POST("/routes", h.CreateRoute)
		admin.PUT("/routes/:id", h.UpdateRoute)
		admin.PUT("/routes/:id/worker", h.AssignWorker)
		admin.DELETE("/routes/:id", h.DeleteRoute)

		admin.GET("/customers", h.AdminListCustomers)
		admin.GET("/workers", h.AdminListWorkers)
		admin.PUT("/customers/:id/route", h.AdminAssignCustomerRoute)
		admin.PUT("/users/:id", h.AdminUpdateUser)
		admin.DELETE("/users/:id", h.AdminDeleteUser)

		admin.GET("/analytics/overview", h.AnalyticsOverview)
	}
}
