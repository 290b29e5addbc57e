package models

// MilkVariety is a purchasable milk product. Bookings and subscriptions reference it by Name.
type MilkVariety struct {
	Base
	Name          string  `json:"name" gorm:"uniqueIndex;not null"`
	Color         string  `json:"color" gorm:"not null"`
	PricePerLiter float64 `json:"price_per_liter" gorm:"not null"`
	Stock         int     `json:"stock" gorm:"not null;default:0"`
	Description   string  `json:"description"`
}
