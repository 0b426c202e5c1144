package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type scheduleManager interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.DaySchedule, error)
	Upsert(ctx context.Context, barbershopID string, req models.UpsertDayScheduleRequest) (*models.DaySchedule, bool, error)
	Delete(ctx context.Context, barbershopID, id string) error
	UpdateSlotDuration(ctx context.Context, barbershopID string, req models.UpdateSlotDurationRequest) (*models.Barbershop, error)
}

// ScheduleHandler manages working hours endpoints.
type ScheduleHandler struct {
	service scheduleManager
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc scheduleManager) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List working hours
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param barberId query string false "Include the overrides of this barber"
// @Param defaults query bool false "Only barbershop defaults"
// @Success 200 {object} response.Envelope
// @Router /barbershops/{shopId}/schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	filter := models.ScheduleFilter{BarbershopID: tenant.BarbershopID, DefaultsOnly: c.Query("defaults") == "true"}
	if barberID := c.Query("barberId"); barberID != "" {
		filter.BarberID = &barberID
	}

	schedules, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Upsert godoc
// @Summary Set the working hours of one weekday
// @Description Omit barber_id to configure the barbershop default.
// @Tags Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param payload body models.UpsertDayScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /barbershops/{shopId}/schedules [put]
func (h *ScheduleHandler) Upsert(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req models.UpsertDayScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	schedule, created, err := h.service.Upsert(c.Request.Context(), tenant.BarbershopID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, schedule)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete a schedule row
// @Tags Schedules
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param id path string true "Schedule ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /barbershops/{shopId}/schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), tenant.BarbershopID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateSlotDuration godoc
// @Summary Change the slot length
// @Tags Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param payload body models.UpdateSlotDurationRequest true "Slot duration"
// @Success 200 {object} response.Envelope
// @Router /barbershops/{shopId}/slot-duration [put]
func (h *ScheduleHandler) UpdateSlotDuration(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateSlotDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	shop, err := h.service.UpdateSlotDuration(c.Request.Context(), tenant.BarbershopID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shop, nil)
}
