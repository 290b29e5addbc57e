package models

// Role defines allowed roles in the system
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleCustomer, RoleWorker, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleWorker, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is a customer, delivery worker or admin. Role never changes after registration.
type User struct {
	Base
	Name         string  `json:"name" gorm:"not null"`
	Email        string  `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"not null"`
	Role         Role    `json:"role" gorm:"not null;index"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	RouteID      *string `json:"route_id" gorm:"index;size:36"`
}

// PublicUser is the user view returned by the API.
type PublicUser struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Role    Role    `json:"role"`
	Phone   string  `json:"phone,omitempty"`
	Address string  `json:"address,omitempty"`
	RouteID *string `json:"route_id,omitempty"`
}

// Public strips credentials from u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		Phone:   u.Phone,
		Address: u.Address,
		RouteID: u.RouteID,
	}
}
