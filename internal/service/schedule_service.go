package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/availability"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.DaySchedule, error)
	FindExact(ctx context.Context, barbershopID string, barberID *string, dayOfWeek int) (*models.DaySchedule, error)
	Create(ctx context.Context, schedule *models.DaySchedule) error
	Update(ctx context.Context, schedule *models.DaySchedule) error
	Delete(ctx context.Context, barbershopID, id string) error
}

type slotDurationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Barbershop, error)
	UpdateSlotDuration(ctx context.Context, id string, minutes int) error
}

type availabilityInvalidator interface {
	InvalidateBarbershop(ctx context.Context, barbershopID string)
}

// ScheduleService manages working hours and the slot length of a barbershop.
type ScheduleService struct {
	repo        scheduleRepository
	shops       slotDurationRepository
	barbers     barberRepository
	invalidator availabilityInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleService instantiates ScheduleService. invalidator may be nil.
func NewScheduleService(repo scheduleRepository, shops slotDurationRepository, barbers barberRepository, invalidator availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, shops: shops, barbers: barbers, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns stored schedule rows of a barbershop.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.DaySchedule, error) {
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list schedules")
	}
	if schedules == nil {
		schedules = []models.DaySchedule{}
	}
	return schedules, nil
}

// Upsert stores the hours of one weekday, either as the barbershop default or as a barber override.
// The boolean result reports whether a new row was created.
func (s *ScheduleService) Upsert(ctx context.Context, barbershopID string, req models.UpsertDayScheduleRequest) (*models.DaySchedule, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if (req.PauseStart == nil) != (req.PauseEnd == nil) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "pause_start and pause_end must be set together")
	}

	candidate := models.DaySchedule{
		BarbershopID: barbershopID,
		BarberID:     req.BarberID,
		DayOfWeek:    req.DayOfWeek,
		Active:       req.Active,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		PauseStart:   req.PauseStart,
		PauseEnd:     req.PauseEnd,
	}
	window, err := availability.ResolveWindow(&candidate)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := window.Validate(); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if req.BarberID != nil {
		if _, err := s.barbers.FindByID(ctx, barbershopID, *req.BarberID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown barber")
			}
			return nil, false, appErrors.Internal(err, "failed to load barber")
		}
	}

	existing, err := s.repo.FindExact(ctx, barbershopID, req.BarberID, req.DayOfWeek)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load schedule")
	}

	created := existing == nil
	if created {
		if err := s.repo.Create(ctx, &candidate); err != nil {
			return nil, false, appErrors.Internal(err, "failed to create schedule")
		}
	} else {
		candidate.ID = existing.ID
		candidate.CreatedAt = existing.CreatedAt
		if err := s.repo.Update(ctx, &candidate); err != nil {
			return nil, false, appErrors.Internal(err, "failed to update schedule")
		}
	}

	s.invalidate(ctx, barbershopID)
	return &candidate, created, nil
}

// Delete removes a schedule row. Removing a barber override makes the barbershop default apply again.
func (s *ScheduleService) Delete(ctx context.Context, barbershopID, id string) error {
	if err := s.repo.Delete(ctx, barbershopID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Internal(err, "failed to delete schedule")
	}
	s.invalidate(ctx, barbershopID)
	return nil
}

// UpdateSlotDuration changes the slot length of every barber in the shop. Existing appointments keep
// their instants.
func (s *ScheduleService) UpdateSlotDuration(ctx context.Context, barbershopID string, req models.UpdateSlotDurationRequest) (*models.Barbershop, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot duration")
	}
	if err := s.shops.UpdateSlotDuration(ctx, barbershopID, req.SlotDurationMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "barbershop not found")
		}
		return nil, appErrors.Internal(err, "failed to update slot duration")
	}
	s.invalidate(ctx, barbershopID)

	shop, err := s.shops.FindByID(ctx, barbershopID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load barbershop")
	}
	return shop, nil
}

func (s *ScheduleService) invalidate(ctx context.Context, barbershopID string) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateBarbershop(ctx, barbershopID)
	s.logger.Debug("availability cache invalidated", zap.String("barbershop_id", barbershopID))
}
