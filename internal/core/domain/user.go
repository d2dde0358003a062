package domain

import "time"

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleAM         = "am"
)

// ValidRole reports whether role is one of the application roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleAM:
		return true
	}
	return false
}

// IsManager reports whether role sees every account manager's records.
func IsManager(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Identity is the authenticated caller as seen by services. It is built from
// the session token by the auth middleware and passed explicitly.
type Identity struct {
	UserID    string
	Username  string
	Name      string
	Role      string
	SessionID string
}

// Scope returns the account-manager id a listing must be restricted to.
// AM users are always scoped to themselves; managers use the requested id,
// where "" or "all" means no restriction.
func (i Identity) Scope(requested string) string {
	if i.Role == RoleAM {
		return i.UserID
	}
	if requested == "all" {
		return ""
	}
	return requested
}
