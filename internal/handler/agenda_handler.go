package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/internal/service"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/export"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type agendaExporter interface {
	Agenda(ctx context.Context, tenant models.TenantContext, day string, format export.Format) (*service.ExportResult, error)
}

// AgendaHandler serves printable day agendas.
type AgendaHandler struct {
	service agendaExporter
}

// NewAgendaHandler constructs an AgendaHandler.
func NewAgendaHandler(svc agendaExporter) *AgendaHandler {
	return &AgendaHandler{service: svc}
}

// Export godoc
// @Summary Download a barber's agenda
// @Tags Agenda
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param shopId path string true "Barbershop ID"
// @Param barberId path string true "Barber ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /barbershops/{shopId}/barbers/{barberId}/agenda [get]
func (h *AgendaHandler) Export(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	day := c.Query("date")
	if day == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}

	result, err := h.service.Agenda(c.Request.Context(), tenant, day, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Body)
}
