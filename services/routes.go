package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"milk-delivery-api/models"
)

type RouteInput struct {
	Name     string
	Areas    []string
	WorkerID string
}

// RoutePatch is a partial update; nil fields are left unchanged.
type RoutePatch struct {
	Name  *string
	Areas *[]string
}

type RouteService struct {
	db *gorm.DB
}

func NewRouteService(db *gorm.DB) *RouteService {
	return &RouteService{db: db}
}

func (s *RouteService) List(ctx context.Context) ([]models.Route, error) {
	routes := []models.Route{}
	if err := s.db.WithContext(ctx).Order("name asc").Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

func (s *RouteService) Get(ctx context.Context, id string) (*models.Route, error) {
	var route models.Route
	if err := s.db.WithContext(ctx).First(&route, "id = ?", id).Error; err != nil {
		return nil, lookupError("route", err)
	}
	return &route, nil
}

func (s *RouteService) Create(ctx context.Context, in RouteInput) (*models.Route, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	route := &models.Route{Name: name, Areas: cleanAreas(in.Areas)}
	if in.WorkerID != "" {
		worker, err := s.worker(ctx, in.WorkerID)
		if err != nil {
			return nil, err
		}
		route.WorkerID = &worker.ID
		route.WorkerName = worker.Name
	}
	if err := s.db.WithContext(ctx).Create(route).Error; err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	return route, nil
}

func (s *RouteService) Update(ctx context.Context, id string, p RoutePatch) (*models.Route, error) {
	route, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, validationError("name is required")
		}
		route.Name = name
	}
	if p.Areas != nil {
		route.Areas = cleanAreas(*p.Areas)
	}
	if err := s.db.WithContext(ctx).Save(route).Error; err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}
	return route, nil
}

// AssignWorker sets or clears (empty workerID) the worker serving a route.
// Pending bookings already on the route are handed to the new worker.
func (s *RouteService) AssignWorker(ctx context.Context, routeID, workerID string) (*models.Route, error) {
	route, err := s.Get(ctx, routeID)
	if err != nil {
		return nil, err
	}
	route.WorkerID = nil
	route.WorkerName = ""
	if workerID != "" {
		worker, err := s.worker(ctx, workerID)
		if err != nil {
			return nil, err
		}
		route.WorkerID = &worker.ID
		route.WorkerName = worker.Name
	}

	db := s.db.WithContext(ctx)
	if err := db.Save(route).Error; err != nil {
		return nil, fmt.Errorf("assign worker: %w", err)
	}
	err = db.Model(&models.Booking{}).
		Where("route_id = ? AND status = ?", route.ID, models.StatusPending).
		Update("worker_id", route.WorkerID).Error
	if err != nil {
		return nil, fmt.Errorf("reassign pending bookings: %w", err)
	}
	return route, nil
}

// Delete removes a route and detaches its customers.
func (s *RouteService) Delete(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)
	res := db.Delete(&models.Route{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete route: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("route")
	}
	if err := db.Model(&models.User{}).Where("route_id = ?", id).Update("route_id", nil).Error; err != nil {
		return fmt.Errorf("detach customers: %w", err)
	}
	return nil
}

func (s *RouteService) worker(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, lookupError("worker", err)
	}
	if user.Role != models.RoleWorker {
		return nil, validationError("user %s is not a worker", userID)
	}
	return &user, nil
}

func cleanAreas(areas []string) []string {
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
