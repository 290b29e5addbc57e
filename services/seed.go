package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"milk-delivery-api/models"
)

// DefaultVarieties is the catalogue created by Init.
var DefaultVarieties = []models.MilkVariety{
	{Name: "Aavin Green", Color: "bg-green-500", PricePerLiter: 28, Stock: 150, Description: "Full cream milk"},
	{Name: "Aavin Blue", Color: "bg-blue-500", PricePerLiter: 26, Stock: 100, Description: "Toned milk"},
	{Name: "Aavin Orange", Color: "bg-orange-500", PricePerLiter: 24, Stock: 200, Description: "Standardized milk"},
	{Name: "Aavin Purple", Color: "bg-purple-500", PricePerLiter: 22, Stock: 75, Description: "Slim milk"},
	{Name: "Aavin Pink", Color: "bg-pink-500", PricePerLiter: 20, Stock: 100, Description: "Double toned milk"},
	{Name: "Buttermilk", Color: "bg-yellow-500", PricePerLiter: 15, Stock: 80, Description: "Fresh buttermilk"},
}

type SeedResult struct {
	AdminCreated     bool `json:"admin_created"`
	VarietiesCreated int  `json:"varieties_created"`
}

type SeedService struct {
	db            *gorm.DB
	adminEmail    string
	adminPassword string
	cost          int
}

func NewSeedService(db *gorm.DB, adminEmail, adminPassword string) *SeedService {
	return &SeedService{
		db:            db,
		adminEmail:    normalizeEmail(adminEmail),
		adminPassword: adminPassword,
		cost:          PasswordCost,
	}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *SeedService) WithCost(cost int) *SeedService {
	s.cost = cost
	return s
}

// Init creates the default admin when missing and the default varieties when the catalogue is empty.
// Safe to call repeatedly.
func (s *SeedService) Init(ctx context.Context) (*SeedResult, error) {
	db := s.db.WithContext(ctx)
	out := &SeedResult{}

	var admin models.User
	err := db.Where("email = ?", s.adminEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		admin = models.User{
			Name:         "Admin User",
			Email:        s.adminEmail,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
		out.AdminCreated = true
	case err != nil:
		return nil, fmt.Errorf("load admin: %w", err)
	}

	// A non-empty catalogue belongs to the admin; deleted or renamed defaults stay that way.
	var existing int64
	if err := db.Model(&models.MilkVariety{}).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("count varieties: %w", err)
	}
	if existing > 0 {
		return out, nil
	}
	varieties := make([]models.MilkVariety, len(DefaultVarieties))
	copy(varieties, DefaultVarieties)
	if err := db.Create(&varieties).Error; err != nil {
		return nil, fmt.Errorf("seed varieties: %w", err)
	}
	out.VarietiesCreated = len(varieties)
	return out, nil
}
