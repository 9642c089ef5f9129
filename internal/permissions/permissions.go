// Package permissions implements the role-based authorization evaluator used
// by every admin-facing surface. Evaluation is a pure function over a
// compiled-in role table: no I/O, no mutable state, no error path. A query
// that references an unknown resource or action simply evaluates to a denial.
package permissions

import (
	"strings"

	"github.com/fulluproar/commerce-backend/pkg/enums"
)

// Resource names a guarded namespace.
type Resource string

const (
	ResourceAdmin        Resource = "admin"
	ResourceProducts     Resource = "products"
	ResourceOrders       Resource = "orders"
	ResourceCustomers    Resource = "customers"
	ResourceUsers        Resource = "users"
	ResourceMarketing    Resource = "marketing"
	ResourceFinance      Resource = "finance"
	ResourceHR           Resource = "hr"
	ResourceContent      Resource = "content"
	ResourceIntegrations Resource = "integrations"
	ResourceSystem       Resource = "system"

	// ResourceAll matches any resource.
	ResourceAll Resource = "*"
)

// Action names an operation on a resource.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExecute Action = "execute"

	// ActionAll matches any action.
	ActionAll Action = "*"
)

// GodEmail bypasses the entire permission system regardless of role
// membership. Kept as a literal for parity with long-standing behavior; see
// DESIGN.md for the trade-off discussion.
const GodEmail = "info@fulluproar.com"

// Permission is a single (resource, action) capability grant.
type Permission struct {
	Resource Resource
	Action   Action
}

// HasPermission reports whether the caller may perform action on resource.
//
// Precedence: god email override, then the GOD role, then a linear scan of
// every role's grant list with wildcard matching. Absence of a matching grant
// is a denial; there are no deny entries.
func HasPermission(roles []enums.Role, resource Resource, action Action, actorEmail string) bool {
	if isGodEmail(actorEmail) {
		return true
	}
	for _, role := range roles {
		if role == enums.RoleGod {
			return true
		}
	}
	for _, role := range roles {
		for _, grant := range rolePermissions[role] {
			if grant.Resource == ResourceAll {
				return true
			}
			if grant.Resource != resource {
				continue
			}
			if grant.Action == ActionAll || grant.Action == action {
				return true
			}
		}
	}
	return false
}

// PermissionsForRoles returns the union of grants for the given roles,
// insertion-ordered across roles with first-seen-wins deduplication.
func PermissionsForRoles(roles []enums.Role) []Permission {
	seen := make(map[Permission]struct{})
	var result []Permission
	for _, role := range roles {
		for _, grant := range rolePermissions[role] {
			if _, dup := seen[grant]; dup {
				continue
			}
			seen[grant] = struct{}{}
			result = append(result, grant)
		}
	}
	return result
}

func isGodEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), GodEmail)
}
