package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/availability"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type barbershopRepository interface {
	FindByID(ctx context.Context, id string) (*models.Barbershop, error)
}

type barberRepository interface {
	FindByID(ctx context.Context, barbershopID, id string) (*models.Barber, error)
}

type dayScheduleRepository interface {
	FindForDay(ctx context.Context, barbershopID string, barberID *string, dayOfWeek int) (*models.DaySchedule, error)
}

type appointmentReader interface {
	ListForBarberBetween(ctx context.Context, barberID string, from, to time.Time) ([]models.Appointment, error)
}

type slotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// AvailabilityConfig tunes slot resolution.
type AvailabilityConfig struct {
	MatchTolerance   time.Duration
	CacheTTL         time.Duration
	MaxLookaheadDays int
	DefaultTimezone  string
}

// AvailabilityService answers "which instants can this barber still be booked at".
// Candidate slots depend only on configuration and are cached per barber day; bookings are always
// read fresh.
type AvailabilityService struct {
	shops        barbershopRepository
	barbers      barberRepository
	schedules    dayScheduleRepository
	appointments appointmentReader
	cache        slotCache
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          AvailabilityConfig
	now          func() time.Time
}

// NewAvailabilityService constructs an AvailabilityService. cache and metrics may be nil.
func NewAvailabilityService(shops barbershopRepository, barbers barberRepository, schedules dayScheduleRepository, appointments appointmentReader, cache slotCache, metrics *MetricsService, logger *zap.Logger, cfg AvailabilityConfig) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxLookaheadDays <= 0 {
		cfg.MaxLookaheadDays = 14
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "UTC"
	}
	return &AvailabilityService{
		shops:        shops,
		barbers:      barbers,
		schedules:    schedules,
		appointments: appointments,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Slots returns the bookable instants of one barber on day (YYYY-MM-DD in the barbershop's zone).
// An unknown barbershop or barber yields an empty list.
func (s *AvailabilityService) Slots(ctx context.Context, tenant models.TenantContext, day string) ([]time.Time, error) {
	week, err := s.Week(ctx, tenant, day, 1)
	if err != nil {
		return nil, err
	}
	if len(week) == 0 {
		return []time.Time{}, nil
	}
	return week[0].Slots, nil
}

// Week returns free slots for days consecutive dates starting at from.
func (s *AvailabilityService) Week(ctx context.Context, tenant models.TenantContext, from string, days int) ([]models.DayAvailability, error) {
	if tenant.BarberID == nil || *tenant.BarberID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "barber is required")
	}
	if days <= 0 {
		days = 1
	}
	if days > s.cfg.MaxLookaheadDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d days can be requested", s.cfg.MaxLookaheadDays))
	}
	if _, err := time.Parse(dateLayout, from); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	started := time.Now()
	defer func() { s.metrics.ObserveSlotComputation(time.Since(started)) }()

	shop, ok, err := s.resolveBarber(ctx, tenant.BarbershopID, *tenant.BarberID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.DayAvailability{}, nil
	}
	loc := s.location(shop)
	first, err := time.ParseInLocation(dateLayout, from, loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}

	rangeStart, _ := availability.DayBounds(first, loc)
	rangeEnd := rangeStart.AddDate(0, 0, days)
	booked, err := s.appointments.ListForBarberBetween(ctx, *tenant.BarberID, rangeStart, rangeEnd)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load appointments")
	}

	now := s.now()
	result := make([]models.DayAvailability, 0, days)
	for i := 0; i < days; i++ {
		day := rangeStart.AddDate(0, 0, i)
		candidates, err := s.candidates(ctx, shop, *tenant.BarberID, day)
		if err != nil {
			return nil, err
		}
		free := availability.FilterAvailable(candidates, booked, now, s.cfg.MatchTolerance)
		result = append(result, models.DayAvailability{Date: day.Format(dateLayout), Slots: free})
	}
	return result, nil
}

// OffersSlot reports whether instant is one of the barber's configured slots, ignoring bookings.
func (s *AvailabilityService) OffersSlot(ctx context.Context, shop *models.Barbershop, barberID string, instant time.Time) (bool, error) {
	loc := s.location(shop)
	day, _ := availability.DayBounds(instant, loc)
	candidates, err := s.candidates(ctx, shop, barberID, day)
	if err != nil {
		return false, err
	}
	return availability.Contains(candidates, instant), nil
}

// Location resolves the barbershop's zone, falling back to the configured default.
func (s *AvailabilityService) Location(shop *models.Barbershop) *time.Location {
	return s.location(shop)
}

// InvalidateBarbershop drops cached candidate slots of every barber in the shop.
func (s *AvailabilityService) InvalidateBarbershop(ctx context.Context, barbershopID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("availability:%s:*", barbershopID))
}

func (s *AvailabilityService) resolveBarber(ctx context.Context, barbershopID, barberID string) (*models.Barbershop, bool, error) {
	shop, err := s.shops.FindByID(ctx, barbershopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, appErrors.Internal(err, "failed to load barbershop")
	}
	barber, err := s.barbers.FindByID(ctx, barbershopID, barberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, appErrors.Internal(err, "failed to load barber")
	}
	if !barber.Active {
		return nil, false, nil
	}
	return shop, true, nil
}

// candidates returns the configured slots of day before bookings are applied.
func (s *AvailabilityService) candidates(ctx context.Context, shop *models.Barbershop, barberID string, day time.Time) ([]time.Time, error) {
	loc := s.location(shop)
	day = day.In(loc)
	key := fmt.Sprintf("availability:%s:%s:%s:%d", shop.ID, barberID, day.Format(dateLayout), shop.SlotDurationMinutes)

	if s.cache != nil {
		var cached []time.Time
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			for i := range cached {
				cached[i] = cached[i].In(loc)
			}
			return cached, nil
		}
	}

	barber := barberID
	schedule, err := s.schedules.FindForDay(ctx, shop.ID, &barber, int(day.Weekday()))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load schedule")
	}
	slots, err := availability.ComputeSlots(day, schedule, shop.SlotDurationMinutes)
	if err != nil {
		s.logger.Error("stored schedule is malformed",
			zap.String("barbershop_id", shop.ID),
			zap.String("barber_id", barberID),
			zap.Int("day_of_week", int(day.Weekday())),
			zap.Error(err))
		return []time.Time{}, nil
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, slots, s.cfg.CacheTTL)
	}
	return slots, nil
}

func (s *AvailabilityService) location(shop *models.Barbershop) *time.Location {
	if shop != nil && shop.Timezone != "" {
		if loc, err := time.LoadLocation(shop.Timezone); err == nil {
			return loc
		}
		s.logger.Warn("unknown barbershop timezone", zap.String("barbershop_id", shop.ID), zap.String("timezone", shop.Timezone))
	}
	if loc, err := time.LoadLocation(s.cfg.DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}
