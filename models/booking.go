package models

// BookingStatus represents all possible states of a daily delivery
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusDelivered BookingStatus = "delivered"
	StatusMissed    BookingStatus = "missed"
	StatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDelivered, StatusMissed, StatusCancelled:
		return true
	default:
		return false
	}
}

// DefaultRouteID is used when the customer has no route assigned.
const DefaultRouteID = "default"

// Booking is a single day's milk order for one customer.
type Booking struct {
	Base
	CustomerID      string        `json:"customer_id" gorm:"not null;index;size:36"`
	CustomerName    string        `json:"customer_name"`
	CustomerAddress string        `json:"customer_address"`
	Date            string        `json:"date" gorm:"not null;index;size:10"`
	MilkType        string        `json:"milk_type" gorm:"not null"`
	Quantity        int           `json:"quantity" gorm:"not null"`
	IsExtra         bool          `json:"is_extra" gorm:"default:false"`
	Status          BookingStatus `json:"status" gorm:"not null;default:'pending';index"`
	RouteID         string        `json:"route_id" gorm:"index;size:36"`
	WorkerID        *string       `json:"worker_id" gorm:"index;size:36"`
}
