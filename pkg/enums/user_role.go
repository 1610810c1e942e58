package enums

import (
	"fmt"
	"strings"
)

// UserRole is the system-wide role attached to every POS account.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleCashier UserRole = "cashier"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleCashier,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole. Empty input yields cashier.
func ParseUserRole(value string) (UserRole, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return UserRoleCashier, nil
	}
	for _, candidate := range validUserRoles {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
