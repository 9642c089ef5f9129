package enums

import "fmt"

// Role represents a staff-level permissions role.
type Role string

const (
	RoleGod             Role = "GOD"
	RoleAdmin           Role = "ADMIN"
	RoleFulfillment     Role = "FULFILLMENT"
	RoleCustomerService Role = "CUSTOMER_SERVICE"
	RoleMarketing       Role = "MARKETING"
	RoleFinance         Role = "FINANCE"
	RoleHR              Role = "HR"
	RoleModerator       Role = "MODERATOR"
	RoleContentEditor   Role = "CONTENT_EDITOR"
	RoleUser            Role = "USER"
)

var validRoles = []Role{
	RoleGod,
	RoleAdmin,
	RoleFulfillment,
	RoleCustomerService,
	RoleMarketing,
	RoleFinance,
	RoleHR,
	RoleModerator,
	RoleContentEditor,
	RoleUser,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// ParseRoles converts a list of raw values, rejecting the whole list on the
// first unknown entry.
func ParseRoles(values []string) ([]Role, error) {
	roles := make([]Role, 0, len(values))
	for _, value := range values {
		role, err := ParseRole(value)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}
