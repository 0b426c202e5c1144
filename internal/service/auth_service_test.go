package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "barbershop-api"})
}

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := newTestAuthService()

	resp, err := svc.IssueToken(models.IssueTokenRequest{UserID: "owner-1", Role: models.RoleOwner, BarbershopID: "shop-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", claims.UserID)
	assert.Equal(t, models.RoleOwner, claims.Role)
	assert.Equal(t, "shop-1", claims.BarbershopID)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newTestAuthService()
	resp, err := svc.IssueToken(models.IssueTokenRequest{UserID: "client-1", Role: models.RoleClient})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRejectsForeignSignatureAndIssuer(t *testing.T) {
	svc := newTestAuthService()

	other := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "barbershop-api"})
	resp, err := other.IssueToken(models.IssueTokenRequest{UserID: "client-1", Role: models.RoleClient})
	require.NoError(t, err)
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.Error(t, err)

	wrongIssuer := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})
	resp, err = wrongIssuer.IssueToken(models.IssueTokenRequest{UserID: "client-1", Role: models.RoleClient})
	require.NoError(t, err)
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}

func TestAuthServiceRejectsNoneAlgorithm(t *testing.T) {
	svc := newTestAuthService()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "x", Role: models.RoleClient})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestAuthServiceRejectsStaffWithoutBarbershop(t *testing.T) {
	svc := newTestAuthService()
	resp, err := svc.IssueToken(models.IssueTokenRequest{UserID: "barber-1", Role: models.RoleBarber})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}

func TestAuthServiceIssueTokenValidatesRole(t *testing.T) {
	_, err := newTestAuthService().IssueToken(models.IssueTokenRequest{UserID: "u", Role: "JANITOR"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
