package auth

import (
	"github.com/fulluproar/commerce-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Roles  []enums.Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to admin clients.
type AccessTokenClaims struct {
	UserID uuid.UUID    `json:"user_id"`
	Email  string       `json:"email"`
	Roles  []enums.Role `json:"roles"`
	jwt.RegisteredClaims
}
