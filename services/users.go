package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"milk-delivery-api/models"
)

// UserPatch is a partial profile update. Role cannot be changed.
type UserPatch struct {
	Name    *string
	Phone   *string
	Address *string
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ListByRole returns the public view of every user with role.
func (s *UserService) ListByRole(ctx context.Context, role models.Role) ([]models.PublicUser, error) {
	if !role.Valid() {
		return nil, validationError("invalid role %q", role)
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("role = ?", role).Order("name asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func (s *UserService) Update(ctx context.Context, userID string, p UserPatch) (*models.PublicUser, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, validationError("name is required")
		}
		user.Name = name
	}
	if p.Phone != nil {
		user.Phone = *p.Phone
	}
	if p.Address != nil {
		user.Address = *p.Address
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}

// AssignRoute moves a customer onto a route (empty routeID clears it) and keeps
// the denormalized customer counts of both routes in step. Counts are best-effort.
// The customer's pending bookings follow them to the new route and its worker.
func (s *UserService) AssignRoute(ctx context.Context, customerID, routeID string) (*models.PublicUser, error) {
	user, err := s.get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleCustomer {
		return nil, validationError("only customers are assigned to routes")
	}
	db := s.db.WithContext(ctx)
	var route models.Route
	if routeID != "" {
		if err := db.First(&route, "id = ?", routeID).Error; err != nil {
			return nil, lookupError("route", err)
		}
	}
	previous := user.RouteID
	if previous != nil && *previous == routeID {
		pub := user.Public()
		return &pub, nil
	}

	user.RouteID = nil
	if routeID != "" {
		user.RouteID = &routeID
	}
	if err := db.Model(user).Update("route_id", user.RouteID).Error; err != nil {
		return nil, fmt.Errorf("assign route: %w", err)
	}
	if previous != nil && *previous != "" {
		if err := adjustCustomerCount(db, *previous, -1); err != nil {
			return nil, err
		}
	}
	if routeID != "" {
		if err := adjustCustomerCount(db, routeID, 1); err != nil {
			return nil, err
		}
	}

	bookingRoute := models.DefaultRouteID
	if routeID != "" {
		bookingRoute = routeID
	}
	err = db.Model(&models.Booking{}).
		Where("customer_id = ? AND status = ?", user.ID, models.StatusPending).
		Updates(map[string]any{"route_id": bookingRoute, "worker_id": route.WorkerID}).Error
	if err != nil {
		return nil, fmt.Errorf("move pending bookings: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}

// Delete removes a user. Admins cannot delete themselves. A deleted worker's routes
// and pending bookings are left unassigned.
func (s *UserService) Delete(ctx context.Context, id models.Identity, userID string) error {
	if id.UserID == userID {
		return validationError("you cannot delete your own account")
	}
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if err := db.Delete(user).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	switch user.Role {
	case models.RoleCustomer:
		if user.RouteID != nil && *user.RouteID != "" {
			return adjustCustomerCount(db, *user.RouteID, -1)
		}
	case models.RoleWorker:
		err := db.Model(&models.Route{}).Where("worker_id = ?", user.ID).
			Updates(map[string]any{"worker_id": nil, "worker_name": ""}).Error
		if err != nil {
			return fmt.Errorf("unassign routes: %w", err)
		}
		err = db.Model(&models.Booking{}).
			Where("worker_id = ? AND status = ?", user.ID, models.StatusPending).
			Update("worker_id", nil).Error
		if err != nil {
			return fmt.Errorf("unassign pending bookings: %w", err)
		}
	case models.RoleAdmin:
	}
	return nil
}

func (s *UserService) get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, lookupError("user", err)
	}
	return &user, nil
}

func adjustCustomerCount(db *gorm.DB, routeID string, delta int) error {
	err := db.Model(&models.Route{}).Where("id = ?", routeID).
		Update("customer_count", gorm.Expr(
			"CASE WHEN customer_count + ? < 0 THEN 0 ELSE customer_count + ? END", delta, delta)).Error
	if err != nil {
		return fmt.Errorf("update customer count: %w", err)
	}
	return nil
}
