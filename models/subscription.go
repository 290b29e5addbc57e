package models

import "gorm.io/datatypes"

// MonthlySubscription is a recurring daily booking template spanning [StartDate, EndDate].
type MonthlySubscription struct {
	Base
	CustomerID   string                      `json:"customer_id" gorm:"not null;index;size:36"`
	MilkType     string                      `json:"milk_type" gorm:"not null"`
	Quantity     int                         `json:"quantity" gorm:"not null"`
	StartDate    string                      `json:"start_date" gorm:"not null;size:10"`
	EndDate      string                      `json:"end_date" gorm:"not null;size:10"`
	DurationDays int                         `json:"duration_days" gorm:"not null"`
	IsActive     bool                        `json:"is_active" gorm:"not null"`
	PausedDates  datatypes.JSONSlice[string] `json:"paused_dates"`
}
