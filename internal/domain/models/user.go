package models

// Role is fixed at registration and never changes afterwards.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleArtisan  Role = "artisan"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is one of the known account roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleArtisan, RoleAdmin:
		return true
	}
	return false
}

// User represents an account record (customer, artisan or admin).
type User struct {
	ID       int64
	Email    string
	PassHash []byte
	Name     string
	Phone    string
	Role     Role
}
