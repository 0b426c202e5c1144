package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/internal/service"
)

func newAuth() *service.AuthService {
	return service.NewAuthService(nil, nil, service.AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: "barbershop-api"})
}

func tokenFor(t *testing.T, auth *service.AuthService, req models.IssueTokenRequest) string {
	t.Helper()
	token, err := auth.IssueToken(req)
	require.NoError(t, err)
	return "Bearer " + token.AccessToken
}

func perform(router *gin.Engine, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestJWTRejectsMissingAndMalformedTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/private", JWT(newAuth()), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := perform(router, http.MethodGet, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="barbershop-api"`, rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/private", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/private", "Bearer not-a-jwt").Code)
}

func TestJWTStoresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newAuth()
	router := gin.New()
	var seen *models.JWTClaims
	var userID string
	router.GET("/private", JWT(auth), func(c *gin.Context) {
		seen = Claims(c)
		userID = c.GetString(ContextUserIDKey)
		c.Status(http.StatusNoContent)
	})

	rec := perform(router, http.MethodGet, "/private", tokenFor(t, auth, models.IssueTokenRequest{UserID: "client-1", Role: models.RoleClient}))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "client-1", seen.UserID)
	assert.Equal(t, "client-1", userID)
}

func TestTenantRejectsStaffOfOtherBarbershop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newAuth()
	router := gin.New()
	var tenant models.TenantContext
	router.GET("/barbershops/:shopId/barbers/:barberId", JWT(auth), Tenant(), func(c *gin.Context) {
		tenant, _ = TenantFrom(c)
		c.Status(http.StatusNoContent)
	})

	owner := tokenFor(t, auth, models.IssueTokenRequest{UserID: "owner", Role: models.RoleOwner, BarbershopID: "shop-1"})
	rec := perform(router, http.MethodGet, "/barbershops/shop-2/barbers/b1", owner)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = perform(router, http.MethodGet, "/barbershops/shop-1/barbers/b1", owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "shop-1", tenant.BarbershopID)
	require.NotNil(t, tenant.BarberID)
	assert.Equal(t, "b1", *tenant.BarberID)

	client := tokenFor(t, auth, models.IssueTokenRequest{UserID: "client", Role: models.RoleClient})
	assert.Equal(t, http.StatusNoContent, perform(router, http.MethodGet, "/barbershops/shop-2/barbers/b1", client).Code)
}

func TestTenantOnPublicRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var tenant models.TenantContext
	router.GET("/barbershops/:shopId", Tenant(), func(c *gin.Context) {
		tenant, _ = TenantFrom(c)
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, perform(router, http.MethodGet, "/barbershops/shop-9", "").Code)
	assert.Equal(t, "shop-9", tenant.BarbershopID)
	assert.Nil(t, tenant.BarberID)
}

func TestRequireStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newAuth()
	router := gin.New()
	router.GET("/staff", JWT(auth), RequireStaff(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	client := tokenFor(t, auth, models.IssueTokenRequest{UserID: "client", Role: models.RoleClient})
	rec := perform(router, http.MethodGet, "/staff", client)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	barber := tokenFor(t, auth, models.IssueTokenRequest{UserID: "barber", Role: models.RoleBarber, BarbershopID: "shop-1"})
	assert.Equal(t, http.StatusNoContent, perform(router, http.MethodGet, "/staff", barber).Code)
}

func TestRateLimitPerPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, 2)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	router := gin.New()
	router.POST("/book", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, perform(router, http.MethodPost, "/book", "").Code)
	assert.Equal(t, http.StatusNoContent, perform(router, http.MethodPost, "/book", "").Code)
	rec := perform(router, http.MethodPost, "/book", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))

	fixed = fixed.Add(time.Minute)
	assert.Equal(t, http.StatusNoContent, perform(router, http.MethodPost, "/book", "").Code)
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	assert.True(t, limiter.Allow("a"))
	fixed = fixed.Add(limiterIdleTTL + time.Second)
	assert.True(t, limiter.Allow("b"))
	assert.NotContains(t, limiter.visitors, "a")
}

type auditRecorder struct {
	entries []*models.AuditLog
}

func (a *auditRecorder) Create(ctx context.Context, log *models.AuditLog) error {
	a.entries = append(a.entries, log)
	return nil
}

func TestAuditRecordsSuccessfulRequestsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &auditRecorder{}
	router := gin.New()
	router.DELETE("/barbershops/:shopId/schedules/:id", Audit(repo, models.AuditActionScheduleDelete, "schedule"), func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	})

	perform(router, http.MethodDelete, "/barbershops/shop-1/schedules/s1", "")
	perform(router, http.MethodDelete, "/barbershops/shop-1/schedules/missing", "")

	require.Len(t, repo.entries, 1)
	assert.Equal(t, models.AuditActionScheduleDelete, repo.entries[0].Action)
	assert.Equal(t, "s1", *repo.entries[0].ResourceID)
	require.NotNil(t, repo.entries[0].BarbershopID)
	assert.Equal(t, "shop-1", *repo.entries[0].BarbershopID)
}

func TestResponseMetaTracksProcessingTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())
	var meta map[string]interface{}
	router.GET("/", func(c *gin.Context) {
		SetMeta(c, "slot_count", 3)
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	perform(router, http.MethodGet, "/", "")
	assert.Equal(t, 3, meta["slot_count"])
	assert.Contains(t, meta, processingTimeMs)
}

func TestMetricsSkipsProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/barbershops/:shopId", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(router, http.MethodGet, "/health", "")
	perform(router, http.MethodGet, "/barbershops/shop-1", "")
	perform(router, http.MethodGet, "/nowhere", "")

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}
