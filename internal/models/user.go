package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin   UserRole = "SUPERADMIN"
	RoleAdminICODSA  UserRole = "ADMIN_ICODSA"
	RoleAdminICICYTA UserRole = "ADMIN_ICICYTA"
)

// ManagesSeries reports whether the role may administer conferences of the
// given series. Superadmins manage everything; series admins only their own.
func (r UserRole) ManagesSeries(series ConferenceSeries) bool {
	switch r {
	case RoleSuperAdmin:
		return true
	case RoleAdminICODSA:
		return series == SeriesICODSA
	case RoleAdminICICYTA:
		return series == SeriesICICYTA
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateUserRequest is the payload for provisioning an admin account.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	FullName string   `json:"full_name" validate:"required"`
	Role     UserRole `json:"role" validate:"required,oneof=SUPERADMIN ADMIN_ICODSA ADMIN_ICICYTA"`
}

// UpdateUserRequest carries partial user changes.
type UpdateUserRequest struct {
	FullName *string   `json:"full_name,omitempty"`
	Role     *UserRole `json:"role,omitempty" validate:"omitempty,oneof=SUPERADMIN ADMIN_ICODSA ADMIN_ICICYTA"`
	Active   *bool     `json:"active,omitempty"`
	Password *string   `json:"password,omitempty" validate:"omitempty,min=6"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
