package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type appointmentRepository interface {
	FindByID(ctx context.Context, barbershopID, id string) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus) (bool, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
}

// AppointmentService exposes booked appointments and their lifecycle after booking.
type AppointmentService struct {
	repo   appointmentRepository
	queue  jobEnqueuer
	logger *zap.Logger
}

// NewAppointmentService constructs an AppointmentService. queue may be nil.
func NewAppointmentService(repo appointmentRepository, queue jobEnqueuer, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{repo: repo, queue: queue, logger: logger}
}

// Get returns one appointment. Clients only see their own; anything else reads as not found.
func (s *AppointmentService) Get(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, id string) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, tenant.BarbershopID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Internal(err, "failed to load appointment")
	}
	if !canView(principal, appt) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
	}
	return appt, nil
}

// List returns appointments of the tenant barbershop. Clients are restricted to their own rows and
// barbers to their own chair.
func (s *AppointmentService) List(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error) {
	if principal == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter.BarbershopID = tenant.BarbershopID
	if tenant.BarberID != nil {
		filter.BarberID = *tenant.BarberID
	}
	switch principal.Role {
	case models.RoleClient:
		filter.ClientID = principal.UserID
	case models.RoleBarber:
		if principal.BarberID != "" {
			filter.BarberID = principal.BarberID
		}
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must be before to")
	}

	appts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list appointments")
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return appts, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Complete marks a scheduled appointment as served. Staff only.
func (s *AppointmentService) Complete(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, id string) (*models.Appointment, error) {
	if principal == nil || !principal.Role.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can complete appointments")
	}
	return s.transition(ctx, principal, tenant, id, models.AppointmentCompleted)
}

// Cancel frees the slot of a scheduled appointment. Staff may cancel any appointment of the shop,
// clients only their own.
func (s *AppointmentService) Cancel(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, id string) (*models.Appointment, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return s.transition(ctx, principal, tenant, id, models.AppointmentCancelled)
}

func (s *AppointmentService) transition(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, id string, to models.AppointmentStatus) (*models.Appointment, error) {
	appt, err := s.Get(ctx, principal, tenant, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.AppointmentScheduled {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "appointment is already "+string(appt.Status))
	}

	ok, err := s.repo.UpdateStatus(ctx, appt.ID, models.AppointmentScheduled, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update appointment")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "appointment changed concurrently")
	}

	appt.Status = to
	appt.UpdatedAt = time.Now().UTC()
	enqueueAppointmentEvent(ctx, s.queue, s.logger, models.EventAppointmentStatusChanged, appt, principal.UserID)
	s.logger.Info("appointment status changed",
		zap.String("appointment_id", appt.ID),
		zap.String("status", string(to)),
		zap.String("actor_id", principal.UserID))
	return appt, nil
}

func canView(principal *models.JWTClaims, appt *models.Appointment) bool {
	if principal == nil {
		return false
	}
	switch principal.Role {
	case models.RoleClient:
		return appt.ClientID == principal.UserID
	case models.RoleBarber:
		return principal.BarberID == "" || principal.BarberID == appt.BarberID
	default:
		return principal.Role.IsStaff()
	}
}
