package enums

import "fmt"

// AccountRole captures the RBAC role carried in access tokens. Customer-role
// callers never see margin data; providers and admins do.
type AccountRole string

const (
	RoleAdmin    AccountRole = "admin"
	RoleProvider AccountRole = "provider"
	RoleCustomer AccountRole = "customer"
)

var validAccountRoles = []AccountRole{
	RoleAdmin,
	RoleProvider,
	RoleCustomer,
}

// String implements fmt.Stringer.
func (r AccountRole) String() string {
	return string(r)
}

// IsValid reports whether the role is recognized.
func (r AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanViewMargin reports whether the role may see cost-derived margin figures.
func (r AccountRole) CanViewMargin() bool {
	return r == RoleAdmin || r == RoleProvider
}

// ParseAccountRole converts a raw string into an AccountRole.
func ParseAccountRole(value string) (AccountRole, error) {
	for _, candidate := range validAccountRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}
