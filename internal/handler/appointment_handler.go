package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type bookingCommitter interface {
	TryBook(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, req models.BookAppointmentRequest) (*models.Appointment, error)
}

type appointmentManager interface {
	Get(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, id string) (*models.Appointment, error)
	List(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error)
	Complete(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, id string) (*models.Appointment, error)
	Cancel(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, id string) (*models.Appointment, error)
}

// AppointmentHandler serves booking and appointment lifecycle endpoints.
type AppointmentHandler struct {
	booking      bookingCommitter
	appointments appointmentManager
}

// NewAppointmentHandler constructs an AppointmentHandler.
func NewAppointmentHandler(booking bookingCommitter, appointments appointmentManager) *AppointmentHandler {
	return &AppointmentHandler{booking: booking, appointments: appointments}
}

// Book godoc
// @Summary Book a slot
// @Description Reserves one free slot. A 409 SLOT_TAKEN means another client won the slot; re-read availability and retry.
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param payload body models.BookAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /barbershops/{shopId}/appointments [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req models.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	appt, err := h.booking.TryBook(c.Request.Context(), claimsFromContext(c), tenant, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.CreatedAt(c, c.Request.URL.Path+"/"+appt.ID, appt)
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param barberId query string false "Filter by barber"
// @Param status query string false "Filter by status"
// @Param from query string false "Inclusive lower bound (RFC3339)"
// @Param to query string false "Exclusive upper bound (RFC3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /barbershops/{shopId}/appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	filter := models.AppointmentFilter{
		BarberID:  c.Query("barberId"),
		Status:    models.AppointmentStatus(c.Query("status")),
		SortOrder: c.Query("order"),
	}
	switch filter.Status {
	case "", models.AppointmentScheduled, models.AppointmentCompleted, models.AppointmentCancelled:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status"))
		return
	}
	for param, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, param+" must be RFC3339"))
			return
		}
		*target = &parsed
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	appts, pagination, err := h.appointments.List(c.Request.Context(), claimsFromContext(c), tenant, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appts, pagination)
}

// Get godoc
// @Summary Get appointment
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /barbershops/{shopId}/appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	appt, err := h.appointments.Get(c.Request.Context(), claimsFromContext(c), tenant, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

// Complete godoc
// @Summary Mark appointment as served
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /barbershops/{shopId}/appointments/{id}/complete [post]
func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.appointments.Complete)
}

// Cancel godoc
// @Summary Cancel appointment
// @Description Frees the slot so it can be booked again.
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /barbershops/{shopId}/appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.appointments.Cancel)
}

type transitionFunc func(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, id string) (*models.Appointment, error)

func (h *AppointmentHandler) transition(c *gin.Context, fn transitionFunc) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	appt, err := fn(c.Request.Context(), claimsFromContext(c), tenant, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}
