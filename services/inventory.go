package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"milk-delivery-api/models"
	"milk-delivery-api/pricing"
)

// Stock thresholds used by the inventory summary.
const (
	LowStockThreshold      = 50
	CriticalStockThreshold = 30
)

// VarietyResolver maps the milk type stored on bookings and subscriptions to its variety.
// Milk types are stored by name; this is the only place that relies on it.
type VarietyResolver interface {
	ResolveVariety(ctx context.Context, milkType string) (*models.MilkVariety, error)
	// Prices returns price per litre keyed by milk type, for bulk pricing.
	Prices(ctx context.Context) (map[string]float64, error)
}

type VarietyInput struct {
	Name          string
	Color         string
	PricePerLiter float64
	Stock         int
	Description   string
}

// VarietyPatch is a partial update; nil fields are left unchanged.
type VarietyPatch struct {
	Name          *string
	Color         *string
	PricePerLiter *float64
	Stock         *int
	Description   *string
}

type InventorySummary struct {
	TotalStock    int                  `json:"total_stock"`
	TotalValue    float64              `json:"total_value"`
	VarietyCount  int                  `json:"variety_count"`
	LowStock      []models.MilkVariety `json:"low_stock"`
	CriticalStock []models.MilkVariety `json:"critical_stock"`
}

type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// ResolveVariety finds a variety by its name.
func (s *InventoryService) ResolveVariety(ctx context.Context, milkType string) (*models.MilkVariety, error) {
	var v models.MilkVariety
	if err := s.db.WithContext(ctx).Where("name = ?", milkType).First(&v).Error; err != nil {
		return nil, lookupError(fmt.Sprintf("milk variety %q", milkType), err)
	}
	return &v, nil
}

func (s *InventoryService) Prices(ctx context.Context) (map[string]float64, error) {
	varieties, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(varieties))
	for _, v := range varieties {
		prices[v.Name] = v.PricePerLiter
	}
	return prices, nil
}

func (s *InventoryService) List(ctx context.Context) ([]models.MilkVariety, error) {
	varieties := []models.MilkVariety{}
	if err := s.db.WithContext(ctx).Order("name asc").Find(&varieties).Error; err != nil {
		return nil, fmt.Errorf("list varieties: %w", err)
	}
	return varieties, nil
}

func (s *InventoryService) Get(ctx context.Context, id string) (*models.MilkVariety, error) {
	var v models.MilkVariety
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, lookupError("milk variety", err)
	}
	return &v, nil
}

func (s *InventoryService) Create(ctx context.Context, in VarietyInput) (*models.MilkVariety, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateVariety(in.Name, in.Color, in.PricePerLiter, in.Stock); err != nil {
		return nil, err
	}
	v := &models.MilkVariety{
		Name:          in.Name,
		Color:         in.Color,
		PricePerLiter: in.PricePerLiter,
		Stock:         in.Stock,
		Description:   in.Description,
	}
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("milk variety %q: %w", in.Name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("create variety: %w", err)
	}
	return v, nil
}

func (s *InventoryService) Update(ctx context.Context, id string, p VarietyPatch) (*models.MilkVariety, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldName := v.Name
	if p.Name != nil {
		v.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		v.Color = *p.Color
	}
	if p.PricePerLiter != nil {
		v.PricePerLiter = *p.PricePerLiter
	}
	if p.Stock != nil {
		v.Stock = *p.Stock
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if err := validateVariety(v.Name, v.Color, v.PricePerLiter, v.Stock); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(v).Error; err != nil {
			return err
		}
		if v.Name == oldName {
			return nil
		}
		// bookings and subscriptions reference varieties by name
		if err := tx.Model(&models.Booking{}).Where("milk_type = ?", oldName).Update("milk_type", v.Name).Error; err != nil {
			return fmt.Errorf("rename on bookings: %w", err)
		}
		if err := tx.Model(&models.MonthlySubscription{}).Where("milk_type = ?", oldName).Update("milk_type", v.Name).Error; err != nil {
			return fmt.Errorf("rename on subscriptions: %w", err)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("milk variety %q: %w", v.Name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("update variety: %w", err)
	}
	return v, nil
}

// Delete removes a variety that no booking or subscription refers to.
func (s *InventoryService) Delete(ctx context.Context, id string) error {
	v, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	var bookings, subs int64
	if err := db.Model(&models.Booking{}).Where("milk_type = ?", v.Name).Count(&bookings).Error; err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if err := db.Model(&models.MonthlySubscription{}).Where("milk_type = ?", v.Name).Count(&subs).Error; err != nil {
		return fmt.Errorf("count subscriptions: %w", err)
	}
	if bookings > 0 || subs > 0 {
		return validationError("milk variety %q is used by %d bookings and %d subscriptions", v.Name, bookings, subs)
	}
	res := db.Delete(&models.MilkVariety{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete variety: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("milk variety")
	}
	return nil
}

// AdjustStock adds delta to the stock counter, clamping at zero.
// Bookings never reserve or consume stock.
func (s *InventoryService) AdjustStock(ctx context.Context, id string, delta int) (*models.MilkVariety, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Stock = max(0, v.Stock+delta)
	if err := s.db.WithContext(ctx).Model(v).Update("stock", v.Stock).Error; err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	return v, nil
}

// Summary aggregates stock levels and value across varieties.
func (s *InventoryService) Summary(ctx context.Context) (*InventorySummary, error) {
	varieties, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &InventorySummary{
		VarietyCount:  len(varieties),
		LowStock:      []models.MilkVariety{},
		CriticalStock: []models.MilkVariety{},
	}
	values := make([]float64, 0, len(varieties))
	for _, v := range varieties {
		out.TotalStock += v.Stock
		values = append(values, pricing.StockValue(v.PricePerLiter, v.Stock))
		switch {
		case v.Stock < CriticalStockThreshold:
			out.CriticalStock = append(out.CriticalStock, v)
		case v.Stock < LowStockThreshold:
			out.LowStock = append(out.LowStock, v)
		}
	}
	out.TotalValue = pricing.Sum(values...)
	return out, nil
}

func validateVariety(name, color string, price float64, stock int) error {
	switch {
	case name == "":
		return validationError("name is required")
	case color == "":
		return validationError("color is required")
	case price <= 0:
		return validationError("price_per_liter must be greater than zero")
	case stock < 0:
		return validationError("stock cannot be negative")
	}
	return nil
}
