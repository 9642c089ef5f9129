package controllers

import (
	"net/http"

	"github.com/fulluproar/commerce-backend/api/middleware"
	"github.com/fulluproar/commerce-backend/api/responses"
	"github.com/fulluproar/commerce-backend/internal/permissions"
	"github.com/fulluproar/commerce-backend/pkg/logger"
)

type permissionGrant struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// PermissionsMe describes the authenticated actor's effective capabilities:
// the flattened grant list plus the admin sections they can open. The admin
// UI renders its navigation from this payload.
func PermissionsMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		email := middleware.EmailFromContext(ctx)
		roles := middleware.RolesFromContext(ctx)

		grants := permissions.PermissionsForRoles(roles)
		out := make([]permissionGrant, 0, len(grants))
		for _, grant := range grants {
			out = append(out, permissionGrant{Resource: string(grant.Resource), Action: string(grant.Action)})
		}

		sections := make([]string, 0)
		for _, key := range permissions.SectionKeys() {
			if permissions.CanAccessAdminSection(roles, key, email) {
				sections = append(sections, key)
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"user_id":  middleware.UserIDFromContext(ctx),
			"email":    email,
			"roles":    roles,
			"grants":   out,
			"sections": sections,
		})
	}
}
