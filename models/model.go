package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the wire and storage format for calendar dates (bookings, subscriptions).
const DateLayout = "2006-01-02"

// Base carries the string primary key and timestamps shared by every record.
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random UUID when the caller did not set one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All lists every model for migrations.
func All() []any {
	return []any{
		&User{},
		&MilkVariety{},
		&Booking{},
		&MonthlySubscription{},
		&Route{},
	}
}
