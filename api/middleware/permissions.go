package middleware

import (
	"net/http"

	"github.com/fulluproar/commerce-backend/api/responses"
	"github.com/fulluproar/commerce-backend/internal/permissions"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
	"github.com/fulluproar/commerce-backend/pkg/logger"
)

// RequirePermission gates a route on a single resource/action grant for the
// actor seeded by Auth.
func RequirePermission(resource permissions.Resource, action permissions.Action, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !permissions.HasPermission(RolesFromContext(ctx), resource, action, EmailFromContext(ctx)) {
				responses.WriteError(ctx, logg, w, forbidden(resource, action))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminSection gates a route on access to an admin panel section.
func RequireAdminSection(section string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !permissions.CanAccessAdminSection(RolesFromContext(ctx), section, EmailFromContext(ctx)) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "section access denied").WithDetails(map[string]any{"section": section}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(resource permissions.Resource, action permissions.Action) error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "permission denied").WithDetails(map[string]any{
		"resource": resource,
		"action":   action,
	})
}
