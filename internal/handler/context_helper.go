package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/middleware"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// tenantFromContext returns the tenant resolved by middleware.Tenant, writing a validation error when
// the route carries no barbershop.
func tenantFromContext(c *gin.Context) (models.TenantContext, bool) {
	if tenant, ok := middleware.TenantFrom(c); ok {
		return tenant, true
	}
	shopID := c.Param("shopId")
	if shopID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "barbershop is required"))
		return models.TenantContext{}, false
	}
	tenant := models.TenantContext{BarbershopID: shopID}
	if barberID := c.Param("barberId"); barberID != "" {
		tenant.BarberID = &barberID
	}
	return tenant, true
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
