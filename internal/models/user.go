package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleOwner      UserRole = "OWNER"
	RoleBarber     UserRole = "BARBER"
	RoleClient     UserRole = "CLIENT"
)

// IsStaff reports whether the role manages a barbershop rather than booking at one.
func (r UserRole) IsStaff() bool {
	switch r {
	case RoleSuperAdmin, RoleOwner, RoleBarber:
		return true
	default:
		return false
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
