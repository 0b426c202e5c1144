package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT payload for access tokens.
// BarbershopID is empty for clients and super admins.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	BarbershopID string   `json:"barbershop_id,omitempty"`
	BarberID     string   `json:"barber_id,omitempty"`
	jwt.RegisteredClaims
}

// IssueTokenRequest describes the principal a development token is minted for.
type IssueTokenRequest struct {
	UserID       string   `json:"user_id" validate:"required"`
	Role         UserRole `json:"role" validate:"required,oneof=SUPERADMIN OWNER BARBER CLIENT"`
	BarbershopID string   `json:"barbershop_id"`
	BarberID     string   `json:"barber_id"`
}

// TokenResponse returns a signed access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
