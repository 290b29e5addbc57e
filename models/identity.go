package models

// Identity is the authenticated caller attached to each request.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

func (i Identity) IsAdmin() bool    { return i.Role == RoleAdmin }
func (i Identity) IsWorker() bool   { return i.Role == RoleWorker }
func (i Identity) IsCustomer() bool { return i.Role == RoleCustomer }
