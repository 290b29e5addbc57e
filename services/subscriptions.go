package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"milk-delivery-api/models"
	"milk-delivery-api/pricing"
)

// Subscription duration bounds, in days.
const (
	DefaultDurationDays = 30
	MaxDurationDays     = 365
)

type CreateSubscriptionInput struct {
	// CustomerID is only honoured for admins subscribing a customer.
	CustomerID   string
	MilkType     string
	Quantity     int
	StartDate    string
	DurationDays int
}

// SubscriptionPatch is a partial update; nil fields are left unchanged.
type SubscriptionPatch struct {
	MilkType    *string
	Quantity    *int
	IsActive    *bool
	PausedDates *[]string
}

// SubscriptionView is a subscription with its costs resolved from the variety table.
type SubscriptionView struct {
	models.MonthlySubscription
	MonthlyCost float64 `json:"monthly_cost"`
	TotalCost   float64 `json:"total_cost"`
}

type SubscriptionService struct {
	db        *gorm.DB
	varieties VarietyResolver
}

func NewSubscriptionService(db *gorm.DB, varieties VarietyResolver) *SubscriptionService {
	return &SubscriptionService{db: db, varieties: varieties}
}

// Create starts an active subscription running from StartDate for DurationDays days.
func (s *SubscriptionService) Create(ctx context.Context, id models.Identity, in CreateSubscriptionInput) (*SubscriptionView, error) {
	customerID, err := bookingOwner(id, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if in.DurationDays == 0 {
		in.DurationDays = DefaultDurationDays
	}
	if in.DurationDays < 1 || in.DurationDays > MaxDurationDays {
		return nil, validationError("duration_days must be between 1 and %d", MaxDurationDays)
	}
	if in.Quantity < 1 {
		return nil, validationError("quantity must be at least 1")
	}
	start, err := time.Parse(models.DateLayout, in.StartDate)
	if err != nil {
		return nil, validationError("start_date %q must be YYYY-MM-DD", in.StartDate)
	}
	variety, err := resolveMilkType(ctx, s.varieties, in.MilkType)
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

	sub := models.MonthlySubscription{
		CustomerID:   customer.ID,
		MilkType:     variety.Name,
		Quantity:     in.Quantity,
		StartDate:    in.StartDate,
		EndDate:      start.AddDate(0, 0, in.DurationDays).Format(models.DateLayout),
		DurationDays: in.DurationDays,
		IsActive:     true,
		PausedDates:  datatypes.JSONSlice[string]{},
	}
	if err := db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return subscriptionView(sub, variety.PricePerLiter), nil
}

// List returns the subscriptions visible to id. Workers have no subscription view.
func (s *SubscriptionService) List(ctx context.Context, id models.Identity) ([]SubscriptionView, error) {
	query, err := scopeSubscriptions(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	var subs []models.MonthlySubscription
	if err := query.Order("start_date desc").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	prices, err := s.varieties.Prices(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, *subscriptionView(sub, prices[sub.MilkType]))
	}
	return views, nil
}

// Toggle flips IsActive and leaves everything else alone.
func (s *SubscriptionService) Toggle(ctx context.Context, id models.Identity, subID string) (*SubscriptionView, error) {
	sub, err := s.loadVisible(ctx, id, subID)
	if err != nil {
		return nil, err
	}
	sub.IsActive = !sub.IsActive
	if err := s.db.WithContext(ctx).Model(sub).Update("is_active", sub.IsActive).Error; err != nil {
		return nil, fmt.Errorf("toggle subscription: %w", err)
	}
	return s.view(ctx, sub)
}

// Update applies a partial change. Paused dates are stored as given, deduplicated and sorted.
func (s *SubscriptionService) Update(ctx context.Context, id models.Identity, subID string, p SubscriptionPatch) (*SubscriptionView, error) {
	sub, err := s.loadVisible(ctx, id, subID)
	if err != nil {
		return nil, err
	}
	if p.MilkType != nil {
		variety, err := resolveMilkType(ctx, s.varieties, *p.MilkType)
		if err != nil {
			return nil, err
		}
		sub.MilkType = variety.Name
	}
	if p.Quantity != nil {
		if *p.Quantity < 1 {
			return nil, validationError("quantity must be at least 1")
		}
		sub.Quantity = *p.Quantity
	}
	if p.IsActive != nil {
		sub.IsActive = *p.IsActive
	}
	if p.PausedDates != nil {
		dates := slices.Clone(*p.PausedDates)
		for _, d := range dates {
			if err := validateDate(d); err != nil {
				return nil, err
			}
		}
		slices.Sort(dates)
		sub.PausedDates = slices.Compact(dates)
	}
	if err := s.db.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return s.view(ctx, sub)
}

func (s *SubscriptionService) Delete(ctx context.Context, id models.Identity, subID string) error {
	sub, err := s.loadVisible(ctx, id, subID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(sub).Error; err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionService) loadVisible(ctx context.Context, id models.Identity, subID string) (*models.MonthlySubscription, error) {
	query, err := scopeSubscriptions(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	var sub models.MonthlySubscription
	if err := query.First(&sub, "id = ?", subID).Error; err != nil {
		return nil, lookupError("subscription", err)
	}
	return &sub, nil
}

func (s *SubscriptionService) view(ctx context.Context, sub *models.MonthlySubscription) (*SubscriptionView, error) {
	prices, err := s.varieties.Prices(ctx)
	if err != nil {
		return nil, err
	}
	return subscriptionView(*sub, prices[sub.MilkType]), nil
}

func subscriptionView(sub models.MonthlySubscription, pricePerLiter float64) *SubscriptionView {
	return &SubscriptionView{
		MonthlySubscription: sub,
		MonthlyCost:         pricing.MonthlyCost(pricePerLiter, sub.Quantity),
		TotalCost:           pricing.SubscriptionTotal(pricePerLiter, sub.Quantity, sub.DurationDays),
	}
}

func scopeSubscriptions(db *gorm.DB, id models.Identity) (*gorm.DB, error) {
	switch id.Role {
	case models.RoleAdmin:
		return db, nil
	case models.RoleCustomer:
		return db.Where("customer_id = ?", id.UserID), nil
	case models.RoleWorker:
		return nil, fmt.Errorf("workers have no subscription access: %w", ErrForbidden)
	default:
		return nil, ErrForbidden
	}
}
