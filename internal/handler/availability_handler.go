package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/middleware"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type availabilityProvider interface {
	Slots(ctx context.Context, tenant models.TenantContext, day string) ([]time.Time, error)
	Week(ctx context.Context, tenant models.TenantContext, from string, days int) ([]models.DayAvailability, error)
}

// AvailabilityHandler serves the public free-slot endpoints.
type AvailabilityHandler struct {
	service availabilityProvider
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(svc availabilityProvider) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Day godoc
// @Summary List free slots of a barber on one day
// @Tags Availability
// @Produce json
// @Param shopId path string true "Barbershop ID"
// @Param barberId path string true "Barber ID"
// @Param date query string true "Day in the barbershop timezone (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /barbershops/{shopId}/barbers/{barberId}/availability [get]
func (h *AvailabilityHandler) Day(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	day := c.Query("date")
	if day == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}

	slots, err := h.service.Slots(c.Request.Context(), tenant, day)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "slot_count", len(slots))
	response.JSON(c, http.StatusOK, models.DayAvailability{Date: day, Slots: slots}, nil, middleware.ExtractMeta(c))
}

// Week godoc
// @Summary List free slots of a barber over consecutive days
// @Tags Availability
// @Produce json
// @Param shopId path string true "Barbershop ID"
// @Param barberId path string true "Barber ID"
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param days query int false "Number of days, defaults to 7"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /barbershops/{shopId}/barbers/{barberId}/availability/week [get]
func (h *AvailabilityHandler) Week(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	from := c.Query("from")
	if from == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from is required"))
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "days must be a positive integer"))
		return
	}

	week, err := h.service.Week(c.Request.Context(), tenant, from, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil, middleware.ExtractMeta(c))
}
