package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"milk-delivery-api/models"
	"milk-delivery-api/services"
	"milk-delivery-api/testutil"
)

type stubTokens struct{}

func (stubTokens) GenerateToken(user *models.User) (string, error) {
	return "token-" + user.ID, nil
}

type env struct {
	db            *gorm.DB
	auth          *services.AuthService
	inventory     *services.InventoryService
	bookings      *services.BookingService
	subscriptions *services.SubscriptionService
	routes        *services.RouteService
	users         *services.UserService
	analytics     *services.AnalyticsService
	seed          *services.SeedService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	inv := services.NewInventoryService(db)
	e := &env{
		db:            db,
		auth:          services.NewAuthService(db, stubTokens{}).WithCost(bcrypt.MinCost),
		inventory:     inv,
		bookings:      services.NewBookingService(db, inv),
		subscriptions: services.NewSubscriptionService(db, inv),
		routes:        services.NewRouteService(db),
		users:         services.NewUserService(db),
		analytics:     services.NewAnalyticsService(db, inv),
		seed:          services.NewSeedService(db, "admin@milk.com", "admin123").WithCost(bcrypt.MinCost),
	}
	_, err := e.seed.Init(context.Background())
	require.NoError(t, err)
	return e
}

// register creates a user and returns the identity its token would carry.
func (e *env) register(t *testing.T, role models.Role, email string) models.Identity {
	t.Helper()
	res, err := e.auth.Register(context.Background(), services.RegisterInput{
		Name:     string(role) + " " + email,
		Email:    email,
		Password: "secret123",
		Role:     role,
		Address:  "12 Anna Nagar",
	})
	require.NoError(t, err)
	return models.Identity{UserID: res.User.ID, Email: res.User.Email, Role: res.User.Role}
}

func (e *env) admin(t *testing.T) models.Identity {
	t.Helper()
	var admin models.User
	require.NoError(t, e.db.Where("email = ?", "admin@milk.com").First(&admin).Error)
	return models.Identity{UserID: admin.ID, Email: admin.Email, Role: admin.Role}
}

// routeWithWorker creates a route served by worker and puts customer on it.
func (e *env) routeWithWorker(t *testing.T, worker, customer models.Identity) *models.Route {
	t.Helper()
	ctx := context.Background()
	route, err := e.routes.Create(ctx, services.RouteInput{Name: "Route A", Areas: []string{"Anna Nagar"}, WorkerID: worker.UserID})
	require.NoError(t, err)
	_, err = e.users.AssignRoute(ctx, customer.UserID, route.ID)
	require.NoError(t, err)
	return route
}
