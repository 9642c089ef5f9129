package types

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/fulluproar/commerce-backend/pkg/enums"
)

// RoleList stores a role set as comma-separated text so the same column works
// on Postgres and the sqlite test databases.
type RoleList []enums.Role

// Value implements driver.Valuer.
func (r RoleList) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "", nil
	}
	parts := make([]string, len(r))
	for i, role := range r {
		if !role.IsValid() {
			return nil, fmt.Errorf("invalid role %q", role)
		}
		parts[i] = string(role)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner.
func (r *RoleList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into RoleList", src)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		*r = nil
		return nil
	}

	parts := strings.Split(raw, ",")
	roles := make(RoleList, 0, len(parts))
	for _, part := range parts {
		role, err := enums.ParseRole(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		roles = append(roles, role)
	}
	*r = roles
	return nil
}

// Contains reports whether the list holds the given role.
func (r RoleList) Contains(role enums.Role) bool {
	for _, candidate := range r {
		if candidate == role {
			return true
		}
	}
	return false
}
