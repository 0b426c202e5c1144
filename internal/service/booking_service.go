package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/availability"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/internal/repository"
	"github.com/noah-isme/barbershop-api/pkg/cache"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/jobs"
	"github.com/noah-isme/barbershop-api/pkg/middleware/requestid"
)

type bookingStore interface {
	FindConflict(ctx context.Context, barberID string, date time.Time) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) error
}

type catalogRepository interface {
	FindByID(ctx context.Context, barbershopID, id string) (*models.Service, error)
}

type slotOffer interface {
	OffersSlot(ctx context.Context, shop *models.Barbershop, barberID string, instant time.Time) (bool, error)
}

type slotLocker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (*cache.Lock, bool, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// BookingService commits a client's choice of slot.
type BookingService struct {
	shops     barbershopRepository
	barbers   barberRepository
	catalog   catalogRepository
	store     bookingStore
	slots     slotOffer
	locker    slotLocker
	queue     jobEnqueuer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	lockTTL   time.Duration
	now       func() time.Time
}

// BookingServiceParams groups BookingService collaborators. Locker, Queue and Metrics are optional.
type BookingServiceParams struct {
	Barbershops  barbershopRepository
	Barbers      barberRepository
	Catalog      catalogRepository
	Appointments bookingStore
	Availability slotOffer
	Locker       slotLocker
	Queue        jobEnqueuer
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
	LockTTL      time.Duration
}

// NewBookingService constructs a BookingService.
func NewBookingService(p BookingServiceParams) *BookingService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.LockTTL <= 0 {
		p.LockTTL = 5 * time.Second
	}
	return &BookingService{
		shops:     p.Barbershops,
		barbers:   p.Barbers,
		catalog:   p.Catalog,
		store:     p.Appointments,
		slots:     p.Availability,
		locker:    p.Locker,
		queue:     p.Queue,
		metrics:   p.Metrics,
		validator: p.Validator,
		logger:    p.Logger,
		lockTTL:   p.LockTTL,
		now:       time.Now,
	}
}

// TryBook reserves req.Date with req.BarberID for the principal. Losing a race for the slot returns
// SLOT_TAKEN; a date that is not an offered future slot returns SLOT_UNAVAILABLE.
func (s *BookingService) TryBook(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, req models.BookAppointmentRequest) (*models.Appointment, error) {
	appt, result, err := s.book(ctx, principal, tenant, req)
	s.metrics.RecordBooking(result)
	return appt, err
}

func (s *BookingService) book(ctx context.Context, principal *models.JWTClaims, tenant models.TenantContext, req models.BookAppointmentRequest) (*models.Appointment, string, error) {
	if principal == nil {
		return nil, BookingResultInvalid, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, BookingResultInvalid, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	shop, err := s.shops.FindByID(ctx, tenant.BarbershopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, BookingResultInvalid, appErrors.Clone(appErrors.ErrNotFound, "barbershop not found")
		}
		return nil, BookingResultError, appErrors.Internal(err, "failed to load barbershop")
	}
	barber, err := s.barbers.FindByID(ctx, shop.ID, req.BarberID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, BookingResultError, appErrors.Internal(err, "failed to load barber")
	}
	if barber == nil || !barber.Active {
		return nil, BookingResultInvalid, appErrors.Clone(appErrors.ErrValidation, "unknown barber")
	}
	offered, err := s.catalog.FindByID(ctx, shop.ID, req.ServiceID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, BookingResultError, appErrors.Internal(err, "failed to load service")
	}
	if offered == nil || !offered.Active {
		return nil, BookingResultInvalid, appErrors.Clone(appErrors.ErrValidation, "unknown service")
	}

	date := availability.Normalize(req.Date)
	if !date.After(s.now()) {
		return nil, BookingResultUnavailable, appErrors.Clone(appErrors.ErrSlotUnavailable, "date is in the past")
	}
	ok, err := s.slots.OffersSlot(ctx, shop, barber.ID, date)
	if err != nil {
		return nil, BookingResultError, err
	}
	if !ok {
		return nil, BookingResultUnavailable, appErrors.Clone(appErrors.ErrSlotUnavailable, "date is not an offered slot")
	}

	if s.locker != nil {
		lock, acquired, err := s.locker.Acquire(ctx, fmt.Sprintf("%s:%d", barber.ID, date.Unix()), s.lockTTL)
		switch {
		case err != nil:
			// The unique index still protects the slot.
			s.logger.Warn("slot lock unavailable", zap.String("barber_id", barber.ID), zap.Error(err))
		case !acquired:
			return nil, BookingResultConflict, slotTaken("slot is being booked", barber.ID, date)
		default:
			defer func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
					s.logger.Warn("failed to release slot lock", zap.String("barber_id", barber.ID), zap.Error(err))
				}
			}()
		}
	}

	existing, err := s.store.FindConflict(ctx, barber.ID, date)
	if err != nil {
		return nil, BookingResultError, appErrors.Internal(err, "failed to check slot")
	}
	if existing != nil {
		return nil, BookingResultConflict, slotTaken("slot already booked", barber.ID, date)
	}

	appt := &models.Appointment{
		ID:           uuid.NewString(),
		BarbershopID: shop.ID,
		BarberID:     barber.ID,
		ServiceID:    offered.ID,
		ClientID:     principal.UserID,
		Date:         date,
		Status:       models.AppointmentScheduled,
	}
	if err := s.store.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, BookingResultConflict, slotTaken("slot already booked", barber.ID, date)
		}
		return nil, BookingResultError, appErrors.Internal(err, "failed to create appointment")
	}

	enqueueAppointmentEvent(ctx, s.queue, s.logger, models.EventAppointmentBooked, appt, principal.UserID)
	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("barbershop_id", appt.BarbershopID),
		zap.String("barber_id", appt.BarberID),
		zap.Time("date", appt.Date))
	return appt, BookingResultSuccess, nil
}

// enqueueAppointmentEvent hands an appointment change to the background queue. Failures are logged
// because the change itself is already committed.
func enqueueAppointmentEvent(ctx context.Context, queue jobEnqueuer, logger *zap.Logger, eventType string, appt *models.Appointment, actorID string) {
	if queue == nil {
		return
	}
	event := models.AppointmentEvent{
		Type:          eventType,
		AppointmentID: appt.ID,
		BarbershopID:  appt.BarbershopID,
		BarberID:      appt.BarberID,
		ClientID:      appt.ClientID,
		Date:          appt.Date,
		Status:        appt.Status,
		ActorID:       actorID,
		RequestID:     requestid.FromContext(ctx),
		OccurredAt:    time.Now().UTC(),
	}
	job := jobs.Job{ID: uuid.NewString(), Type: eventType, Payload: event}
	if err := queue.Enqueue(job); err != nil {
		logger.Warn("failed to enqueue appointment event", zap.String("type", eventType), zap.String("appointment_id", appt.ID), zap.Error(err))
	}
}

func slotTaken(message, barberID string, date time.Time) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrSlotTaken, message).With("barber_id", barberID).With("date", date.UTC())
}
