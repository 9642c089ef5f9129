package controllers

import (
	"context"
	"net/http"

	"github.com/fulluproar/commerce-backend/api/middleware"
	"github.com/fulluproar/commerce-backend/api/responses"
	"github.com/fulluproar/commerce-backend/api/validators"
	"github.com/fulluproar/commerce-backend/internal/identity"
	pkgauth "github.com/fulluproar/commerce-backend/pkg/auth"
	"github.com/fulluproar/commerce-backend/pkg/config"
	"github.com/fulluproar/commerce-backend/pkg/db/models"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
	"github.com/fulluproar/commerce-backend/pkg/logger"
)

type authService interface {
	Login(ctx context.Context, email, password string) (*identity.LoginResult, error)
	Logout(ctx context.Context, jti string) error
	CreateAccount(ctx context.Context, email, password string, roles []enums.Role) (*models.AdminUser, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=10"`
	Roles    []string `json:"roles"`
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-FU-Token", result.Token)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the server-side session named by the bearer token's jti.
func AuthLogout(svc authService, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		token := middleware.BearerToken(r)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		claims, err := pkgauth.ParseAccessToken(cfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}

		if err := svc.Logout(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// CreateUser provisions an admin account with the requested roles.
func CreateUser(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body CreateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roles, err := enums.ParseRoles(body.Roles)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid roles"))
			return
		}

		user, err := svc.CreateAccount(r.Context(), body.Email, body.Password, roles)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":    user.ID,
			"email": user.Email,
			"roles": user.Roles,
		})
	}
}
