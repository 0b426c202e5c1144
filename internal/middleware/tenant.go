package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

// ContextTenantKey is the gin context key storing the resolved models.TenantContext.
const ContextTenantKey = "tenant"

// Tenant resolves the barbershop and optional barber a request targets from the :shopId and
// :barberId path params. Staff tokens bound to another barbershop are rejected; clients and super
// admins may address any barbershop.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID := c.Param("shopId")
		if shopID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "barbershop is required"))
			c.Abort()
			return
		}

		tenant := models.TenantContext{BarbershopID: shopID}
		if barberID := c.Param("barberId"); barberID != "" {
			tenant.BarberID = &barberID
		}

		if claims := Claims(c); claims != nil && claims.Role.IsStaff() && claims.Role != models.RoleSuperAdmin {
			if claims.BarbershopID != shopID {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token is bound to another barbershop"))
				c.Abort()
				return
			}
		}

		c.Set(ContextTenantKey, tenant)
		c.Next()
	}
}

// TenantFrom returns the tenant resolved by Tenant. ok is false when the middleware did not run.
func TenantFrom(c *gin.Context) (models.TenantContext, bool) {
	value, exists := c.Get(ContextTenantKey)
	if !exists {
		return models.TenantContext{}, false
	}
	tenant, ok := value.(models.TenantContext)
	return tenant, ok
}
