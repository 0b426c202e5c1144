package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

// ScheduleRepository provides persistence for weekday working hours.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, barbershop_id, barber_id, day_of_week, active, start_time, end_time, pause_start, pause_end, created_at, updated_at`

// FindForDay resolves the schedule that applies to a barber on a weekday. A barber specific row wins
// over the barbershop default; with a nil barberID only the default is considered. It returns nil
// when neither exists.
func (r *ScheduleRepository) FindForDay(ctx context.Context, barbershopID string, barberID *string, dayOfWeek int) (*models.DaySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM day_schedules WHERE barbershop_id = $1 AND day_of_week = $2 AND (barber_id = $3 OR barber_id IS NULL) ORDER BY barber_id NULLS LAST LIMIT 1`
	var sched models.DaySchedule
	if err := r.db.GetContext(ctx, &sched, query, barbershopID, dayOfWeek, barberID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find day schedule: %w", err)
	}
	return &sched, nil
}

// FindExact loads the row stored for exactly this scope, without falling back to the default.
func (r *ScheduleRepository) FindExact(ctx context.Context, barbershopID string, barberID *string, dayOfWeek int) (*models.DaySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM day_schedules WHERE barbershop_id = $1 AND day_of_week = $2 AND barber_id IS NOT DISTINCT FROM $3`
	var sched models.DaySchedule
	if err := r.db.GetContext(ctx, &sched, query, barbershopID, dayOfWeek, barberID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find exact day schedule: %w", err)
	}
	return &sched, nil
}

// List returns stored rows for a barbershop, defaults first.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.DaySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM day_schedules WHERE barbershop_id = $1`
	args := []interface{}{filter.BarbershopID}
	switch {
	case filter.DefaultsOnly:
		query += ` AND barber_id IS NULL`
	case filter.BarberID != nil:
		query += ` AND (barber_id = $2 OR barber_id IS NULL)`
		args = append(args, *filter.BarberID)
	}
	query += ` ORDER BY barber_id NULLS FIRST, day_of_week ASC`

	var schedules []models.DaySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list day schedules: %w", err)
	}
	return schedules, nil
}

// Create stores a new schedule row.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.DaySchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO day_schedules (id, barbershop_id, barber_id, day_of_week, active, start_time, end_time, pause_start, pause_end, created_at, updated_at) VALUES (:id, :barbershop_id, :barber_id, :day_of_week, :active, :start_time, :end_time, :pause_start, :pause_end, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create day schedule: %w", err)
	}
	return nil
}

// Update overwrites the hours of an existing row.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.DaySchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE day_schedules SET active = :active, start_time = :start_time, end_time = :end_time, pause_start = :pause_start, pause_end = :pause_end, updated_at = :updated_at WHERE id = :id AND barbershop_id = :barbershop_id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update day schedule: %w", err)
	}
	return nil
}

// Delete removes a row. It returns sql.ErrNoRows when nothing matched.
func (r *ScheduleRepository) Delete(ctx context.Context, barbershopID, id string) error {
	const query = `DELETE FROM day_schedules WHERE id = $1 AND barbershop_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, barbershopID)
	if err != nil {
		return fmt.Errorf("delete day schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete day schedule rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
