package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/availability"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/export"
)

type serviceCatalog interface {
	ListByBarbershop(ctx context.Context, barbershopID string) ([]models.Service, error)
}

type zoneResolver interface {
	Location(shop *models.Barbershop) *time.Location
}

// ExportResult is a rendered document ready to be served.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

var agendaHeaders = []string{"Time", "Service", "Duration (min)", "Client", "Status"}

// ExportService renders a barber's day as a printable agenda.
type ExportService struct {
	shops        barbershopRepository
	barbers      barberRepository
	catalog      serviceCatalog
	appointments appointmentReader
	zones        zoneResolver
	renderers    map[export.Format]export.Renderer
	logger       *zap.Logger
}

// NewExportService constructs an ExportService. A nil renderers map uses the defaults of every format.
func NewExportService(shops barbershopRepository, barbers barberRepository, catalog serviceCatalog, appointments appointmentReader, zones zoneResolver, renderers map[export.Format]export.Renderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderers == nil {
		renderers = export.Renderers()
	}
	return &ExportService{
		shops:        shops,
		barbers:      barbers,
		catalog:      catalog,
		appointments: appointments,
		zones:        zones,
		renderers:    renderers,
		logger:       logger,
	}
}

// Agenda renders the live appointments of tenant's barber on day (YYYY-MM-DD, barbershop zone).
func (s *ExportService) Agenda(ctx context.Context, tenant models.TenantContext, day string, format export.Format) (*ExportResult, error) {
	if tenant.BarberID == nil || *tenant.BarberID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "barber is required")
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	shop, err := s.shops.FindByID(ctx, tenant.BarbershopID)
	if err != nil {
		return nil, notFoundOrInternal(err, "barbershop not found", "failed to load barbershop")
	}
	barber, err := s.barbers.FindByID(ctx, shop.ID, *tenant.BarberID)
	if err != nil {
		return nil, notFoundOrInternal(err, "barber not found", "failed to load barber")
	}

	loc := s.zones.Location(shop)
	date, err := time.ParseInLocation(dateLayout, day, loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	from, to := availability.DayBounds(date, loc)

	appts, err := s.appointments.ListForBarberBetween(ctx, barber.ID, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load appointments")
	}
	services, err := s.catalog.ListByBarbershop(ctx, shop.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load services")
	}

	dataset := buildAgendaDataset(shop, barber, day, appts, services, loc)
	body, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("agenda render failed", zap.String("barber_id", barber.ID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render agenda")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("agenda_%s_%s.%s", sanitizeFilename(barber.Name), day, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func buildAgendaDataset(shop *models.Barbershop, barber *models.Barber, day string, appts []models.Appointment, services []models.Service, loc *time.Location) export.Dataset {
	byID := make(map[string]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	rows := make([]map[string]string, 0, len(appts))
	for _, appt := range appts {
		svc, known := byID[appt.ServiceID]
		name, duration := appt.ServiceID, "-"
		if known {
			name = svc.Name
			duration = fmt.Sprintf("%d", svc.DurationMinutes)
		}
		rows = append(rows, map[string]string{
			"Time":           appt.Date.In(loc).Format("15:04"),
			"Service":        name,
			"Duration (min)": duration,
			"Client":         appt.ClientID,
			"Status":         string(appt.Status),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s - %s - %s", shop.Name, barber.Name, day),
		Headers: agendaHeaders,
		Rows:    rows,
	}
}

func notFoundOrInternal(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
