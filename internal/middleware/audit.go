package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/middleware/requestid"
)

type AuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// Audit writes a trail entry for each successful staff change to a barbershop's configuration. The
// route's :id names the resource. Routes without one, like the slot duration, name the barbershop.
func Audit(repo AuditRepository, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if repo == nil || status >= http.StatusBadRequest {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			RequestID: requestid.Value(c),
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if claims := Claims(c); claims != nil {
			entry.UserID = &claims.UserID
		}
		if tenant, ok := TenantFrom(c); ok {
			entry.BarbershopID = &tenant.BarbershopID
		} else if shopID := c.Param("shopId"); shopID != "" {
			entry.BarbershopID = &shopID
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		} else {
			entry.ResourceID = entry.BarbershopID
		}
		entry.Payload, _ = json.Marshal(gin.H{
			"route":  c.FullPath(),
			"method": c.Request.Method,
			"status": status,
		})

		_ = repo.Create(context.WithoutCancel(c.Request.Context()), entry)
	}
}
