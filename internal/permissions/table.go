package permissions

import "github.com/fulluproar/commerce-backend/pkg/enums"

// rolePermissions is the compiled-in authorization table. It is initialized
// once and never mutated at runtime; role editing would be a separate
// persisted-config subsystem, not a mutation of this map.
//
// GOD is intentionally absent: it short-circuits in HasPermission before the
// table is consulted.
var rolePermissions = map[enums.Role][]Permission{
	enums.RoleAdmin: {
		{ResourceAll, ActionAll},
	},
	enums.RoleFulfillment: {
		{ResourceAdmin, ActionRead},
		{ResourceOrders, ActionRead},
		{ResourceOrders, ActionUpdate},
		{ResourceProducts, ActionRead},
	},
	enums.RoleCustomerService: {
		{ResourceAdmin, ActionRead},
		{ResourceOrders, ActionRead},
		{ResourceOrders, ActionUpdate},
		{ResourceCustomers, ActionRead},
		{ResourceCustomers, ActionUpdate},
		{ResourceContent, ActionRead},
	},
	enums.RoleMarketing: {
		{ResourceAdmin, ActionRead},
		{ResourceMarketing, ActionAll},
		{ResourceContent, ActionRead},
		{ResourceContent, ActionCreate},
		{ResourceContent, ActionUpdate},
		{ResourceProducts, ActionRead},
	},
	enums.RoleFinance: {
		{ResourceAdmin, ActionRead},
		{ResourceFinance, ActionAll},
		{ResourceOrders, ActionRead},
	},
	enums.RoleHR: {
		{ResourceAdmin, ActionRead},
		{ResourceHR, ActionAll},
		{ResourceUsers, ActionRead},
	},
	enums.RoleModerator: {
		{ResourceAdmin, ActionRead},
		{ResourceContent, ActionRead},
		{ResourceContent, ActionUpdate},
		{ResourceContent, ActionDelete},
		{ResourceCustomers, ActionRead},
	},
	enums.RoleContentEditor: {
		{ResourceAdmin, ActionRead},
		{ResourceContent, ActionRead},
		{ResourceContent, ActionCreate},
		{ResourceContent, ActionUpdate},
	},
	enums.RoleUser: {},
}

// Table exposes a copy of the static table for capability summaries and tests.
func Table() map[enums.Role][]Permission {
	out := make(map[enums.Role][]Permission, len(rolePermissions))
	for role, grants := range rolePermissions {
		copied := make([]Permission, len(grants))
		copy(copied, grants)
		out[role] = copied
	}
	return out
}
