package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fulluproar/commerce-backend/pkg/auth"
	"github.com/fulluproar/commerce-backend/pkg/config"
	dbpkg "github.com/fulluproar/commerce-backend/pkg/db"
	"github.com/fulluproar/commerce-backend/pkg/db/models"
	"github.com/fulluproar/commerce-backend/pkg/db/types"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
	"github.com/fulluproar/commerce-backend/pkg/logger"
	"github.com/fulluproar/commerce-backend/pkg/security"
)

type accountStore interface {
	FindActiveByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
}

type sessionManager interface {
	Create(ctx context.Context, jti, email string) error
	Revoke(ctx context.Context, jti string) error
}

// Service handles admin authentication: credential verification, access token
// minting, and server-side session bookkeeping.
type Service struct {
	accounts accountStore
	sessions sessionManager
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// LoginResult carries the signed token plus the identity the API returns to
// the client.
type LoginResult struct {
	Token  string
	UserID uuid.UUID
	Email  string
	Roles  []enums.Role
}

func NewService(accounts accountStore, sessions sessionManager, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig, logg *logger.Logger) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		logg:     logg,
		now:      time.Now,
	}
}

// Login verifies the credentials and mints a session-backed access token.
// Unknown email and bad password return the same UNAUTHORIZED error.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.accounts.FindActiveByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up account")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	jti := uuid.NewString()
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
		JTI:    jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	if err := s.sessions.Create(ctx, jti, user.Email); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithActorEmail(ctx, user.Email), "admin logged in")
	}

	return &LoginResult{
		Token:  token,
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
	}, nil
}

// Logout revokes the server-side session for the token's jti.
func (s *Service) Logout(ctx context.Context, jti string) error {
	if strings.TrimSpace(jti) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "jti is required")
	}
	if err := s.sessions.Revoke(ctx, jti); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

// CreateAccount provisions a new admin user with a hashed password.
func (s *Service) CreateAccount(ctx context.Context, email, password string, roles []enums.Role) (*models.AdminUser, error) {
	if strings.TrimSpace(email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	for _, role := range roles {
		if !role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role "+string(role))
		}
	}

	hash, err := security.HashPassword(password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hashing password")
	}

	user := &models.AdminUser{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Roles:        types.RoleList(roles),
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, user); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with that email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating account")
	}
	return user, nil
}
