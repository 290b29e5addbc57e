package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"milk-delivery-api/models"
	"milk-delivery-api/pricing"
	"milk-delivery-api/statemachine"
)

type CreateBookingInput struct {
	// CustomerID is only honoured for admins booking on behalf of a customer.
	CustomerID string
	Date       string
	MilkType   string
	Quantity   int
	IsExtra    bool
}

// BookingPatch is a partial update; nil fields are left unchanged.
type BookingPatch struct {
	Date     *string
	MilkType *string
	Quantity *int
	IsExtra  *bool
	Status   *models.BookingStatus
	WorkerID *string
	RouteID  *string
}

type BookingFilter struct {
	Date   string
	Status models.BookingStatus
}

// BookingView is a booking with its price resolved from the variety table.
type BookingView struct {
	models.Booking
	TotalPrice float64 `json:"total_price"`
}

type BookingService struct {
	db        *gorm.DB
	varieties VarietyResolver
}

func NewBookingService(db *gorm.DB, varieties VarietyResolver) *BookingService {
	return &BookingService{db: db, varieties: varieties}
}

// Create books a delivery in pending state, copying name, address and route from the customer profile.
func (s *BookingService) Create(ctx context.Context, id models.Identity, in CreateBookingInput) (*BookingView, error) {
	customerID, err := bookingOwner(id, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := validateDate(in.Date); err != nil {
		return nil, err
	}
	if in.Quantity < 1 {
		return nil, validationError("quantity must be at least 1")
	}
	variety, err := s.resolve(ctx, in.MilkType)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var customer models.User
	if err := db.First(&customer, "id = ?", customerID).Error; err != nil {
		return nil, lookupError("customer", err)
	}
	if customer.Role != models.RoleCustomer {
		return nil, validationError("user %s is not a customer", customerID)
	}

	booking := models.Booking{
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		CustomerAddress: customer.Address,
		Date:            in.Date,
		MilkType:        variety.Name,
		Quantity:        in.Quantity,
		IsExtra:         in.IsExtra,
		Status:          models.StatusPending,
		RouteID:         models.DefaultRouteID,
	}
	if customer.RouteID != nil && *customer.RouteID != "" {
		booking.RouteID = *customer.RouteID
		var route models.Route
		err := db.First(&route, "id = ?", booking.RouteID).Error
		switch {
		case err == nil:
			booking.WorkerID = route.WorkerID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("load route: %w", err)
		}
	}

	if err := db.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &BookingView{Booking: booking, TotalPrice: pricing.BookingTotal(variety.PricePerLiter, booking.Quantity)}, nil
}

// List returns the bookings visible to id, newest date first.
func (s *BookingService) List(ctx context.Context, id models.Identity, f BookingFilter) ([]BookingView, error) {
	query, err := scopeBookings(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if f.Date != "" {
		if err := validateDate(f.Date); err != nil {
			return nil, err
		}
		query = query.Where("date = ?", f.Date)
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, validationError("unknown status %q", f.Status)
		}
		query = query.Where("status = ?", f.Status)
	}

	var bookings []models.Booking
	if err := query.Order("date desc").Order("created_at desc").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return s.price(ctx, bookings)
}

// Get returns one booking if id may see it.
func (s *BookingService) Get(ctx context.Context, id models.Identity, bookingID string) (*BookingView, error) {
	booking, err := s.loadVisible(ctx, id, bookingID)
	if err != nil {
		return nil, err
	}
	views, err := s.price(ctx, []models.Booking{*booking})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update applies a partial change. Customers may edit their own pending bookings or cancel them,
// workers may only change the status of bookings assigned to them, admins may change anything.
func (s *BookingService) Update(ctx context.Context, id models.Identity, bookingID string, p BookingPatch) (*BookingView, error) {
	booking, err := s.loadVisible(ctx, id, bookingID)
	if err != nil {
		return nil, err
	}

	details := p.Date != nil || p.MilkType != nil || p.Quantity != nil || p.IsExtra != nil
	assignment := p.WorkerID != nil || p.RouteID != nil
	switch id.Role {
	case models.RoleAdmin:
	case models.RoleCustomer:
		if assignment {
			return nil, fmt.Errorf("customers cannot reassign deliveries: %w", ErrForbidden)
		}
		if details && booking.Status != models.StatusPending {
			return nil, validationError("only pending bookings can be changed")
		}
	case models.RoleWorker:
		if details || assignment {
			return nil, fmt.Errorf("workers can only change delivery status: %w", ErrForbidden)
		}
	default:
		return nil, ErrForbidden
	}

	if p.Date != nil {
		if err := validateDate(*p.Date); err != nil {
			return nil, err
		}
		booking.Date = *p.Date
	}
	if p.MilkType != nil {
		variety, err := s.resolve(ctx, *p.MilkType)
		if err != nil {
			return nil, err
		}
		booking.MilkType = variety.Name
	}
	if p.Quantity != nil {
		if *p.Quantity < 1 {
			return nil, validationError("quantity must be at least 1")
		}
		booking.Quantity = *p.Quantity
	}
	if p.IsExtra != nil {
		booking.IsExtra = *p.IsExtra
	}
	if p.WorkerID != nil {
		booking.WorkerID = nil
		if *p.WorkerID != "" {
			if err := s.requireWorker(ctx, *p.WorkerID); err != nil {
				return nil, err
			}
			booking.WorkerID = p.WorkerID
		}
	}
	if p.RouteID != nil {
		booking.RouteID = *p.RouteID
	}
	if p.Status != nil {
		if err := statemachine.CanTransition(booking.Status, *p.Status, id.Role); err != nil {
			return nil, err
		}
		booking.Status = *p.Status
	}

	if err := s.db.WithContext(ctx).Save(booking).Error; err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return s.Get(ctx, id, booking.ID)
}

// UpdateDeliveryStatus records the outcome of a delivery. Applying the current status again is a no-op.
func (s *BookingService) UpdateDeliveryStatus(ctx context.Context, id models.Identity, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	switch id.Role {
	case models.RoleWorker, models.RoleAdmin:
	case models.RoleCustomer:
		return nil, fmt.Errorf("only workers and admins record deliveries: %w", ErrForbidden)
	default:
		return nil, ErrForbidden
	}

	db := s.db.WithContext(ctx)
	var booking models.Booking
	if err := db.First(&booking, "id = ?", bookingID).Error; err != nil {
		return nil, lookupError("booking", err)
	}
	if id.IsWorker() {
		if err := s.requireWorker(ctx, id.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("worker account no longer exists: %w", ErrUnauthorized)
			}
			return nil, err
		}
		if booking.WorkerID == nil || *booking.WorkerID != id.UserID {
			return nil, fmt.Errorf("booking is not on your deliveries: %w", ErrForbidden)
		}
	}
	if err := statemachine.CanTransition(booking.Status, status, id.Role); err != nil {
		return &booking, err
	}
	if booking.Status == status {
		return &booking, nil
	}
	if err := db.Model(&booking).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	booking.Status = status
	return &booking, nil
}

// Delete removes a booking. Only its customer or an admin may delete it.
func (s *BookingService) Delete(ctx context.Context, id models.Identity, bookingID string) error {
	switch id.Role {
	case models.RoleCustomer, models.RoleAdmin:
	case models.RoleWorker:
		return fmt.Errorf("workers cannot delete bookings: %w", ErrForbidden)
	default:
		return ErrForbidden
	}
	booking, err := s.loadVisible(ctx, id, bookingID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(booking).Error; err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (s *BookingService) loadVisible(ctx context.Context, id models.Identity, bookingID string) (*models.Booking, error) {
	query, err := scopeBookings(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	var booking models.Booking
	if err := query.First(&booking, "id = ?", bookingID).Error; err != nil {
		return nil, lookupError("booking", err)
	}
	return &booking, nil
}

func (s *BookingService) resolve(ctx context.Context, milkType string) (*models.MilkVariety, error) {
	return resolveMilkType(ctx, s.varieties, milkType)
}

// resolveMilkType turns an unknown milk type into a validation failure.
func resolveMilkType(ctx context.Context, r VarietyResolver, milkType string) (*models.MilkVariety, error) {
	if milkType == "" {
		return nil, validationError("milk_type is required")
	}
	v, err := r.ResolveVariety(ctx, milkType)
	if errors.Is(err, ErrNotFound) {
		return nil, validationError("unknown milk type %q", milkType)
	}
	return v, err
}

func (s *BookingService) requireWorker(ctx context.Context, userID string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return lookupError("worker", err)
	}
	if user.Role != models.RoleWorker {
		return validationError("user %s is not a worker", userID)
	}
	return nil
}

func (s *BookingService) price(ctx context.Context, bookings []models.Booking) ([]BookingView, error) {
	prices, err := s.varieties.Prices(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, BookingView{Booking: b, TotalPrice: pricing.BookingTotal(prices[b.MilkType], b.Quantity)})
	}
	return views, nil
}

// scopeBookings restricts a query to the bookings id may see.
func scopeBookings(db *gorm.DB, id models.Identity) (*gorm.DB, error) {
	switch id.Role {
	case models.RoleAdmin:
		return db, nil
	case models.RoleCustomer:
		return db.Where("customer_id = ?", id.UserID), nil
	case models.RoleWorker:
		return db.Where("worker_id = ?", id.UserID), nil
	default:
		return nil, ErrForbidden
	}
}

// bookingOwner decides whose booking or subscription is being created.
func bookingOwner(id models.Identity, requested string) (string, error) {
	switch id.Role {
	case models.RoleCustomer:
		if requested != "" && requested != id.UserID {
			return "", fmt.Errorf("customers can only book for themselves: %w", ErrForbidden)
		}
		return id.UserID, nil
	case models.RoleAdmin:
		if requested == "" {
			return "", validationError("customer_id is required")
		}
		return requested, nil
	case models.RoleWorker:
		return "", fmt.Errorf("workers cannot place orders: %w", ErrForbidden)
	default:
		return "", ErrForbidden
	}
}

func validateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return validationError("date %q must be YYYY-MM-DD", date)
	}
	return nil
}
