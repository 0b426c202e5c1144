package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/barbershop-api/internal/models"
)

// ErrDuplicateSlot is returned when the storage layer rejects a second live appointment on the same
// barber and instant.
var ErrDuplicateSlot = errors.New("appointment slot already booked")

const (
	uniqueViolation      = "23505"
	appointmentSlotIndex = "appointments_barber_slot_uniq"
)

// AppointmentRepository provides persistence for appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs an appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = `id, barbershop_id, barber_id, service_id, client_id, date, status, created_at, updated_at`

// ListForBarberBetween returns live appointments of a barber in [from, to) ordered by date.
func (r *AppointmentRepository) ListForBarberBetween(ctx context.Context, barberID string, from, to time.Time) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE barber_id = $1 AND date >= $2 AND date < $3 AND status <> 'CANCELLED' ORDER BY date ASC`
	var appts []models.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, barberID, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("list barber appointments: %w", err)
	}
	return appts, nil
}

// FindConflict returns the live appointment stored for barber at exactly date, or nil.
func (r *AppointmentRepository) FindConflict(ctx context.Context, barberID string, date time.Time) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE barber_id = $1 AND date = $2 AND status <> 'CANCELLED' LIMIT 1`
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, barberID, date.UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find appointment conflict: %w", err)
	}
	return &appt, nil
}

// Create inserts a new appointment. A concurrent booking of the same slot surfaces as ErrDuplicateSlot.
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	appt.Date = appt.Date.UTC()

	const query = `INSERT INTO appointments (id, barbershop_id, barber_id, service_id, client_id, date, status, created_at, updated_at) VALUES (:id, :barbershop_id, :barber_id, :service_id, :client_id, :date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		if isSlotViolation(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func isSlotViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && (pqErr.Constraint == "" || pqErr.Constraint == appointmentSlotIndex)
}

// FindByID loads an appointment scoped to its barbershop.
func (r *AppointmentRepository) FindByID(ctx context.Context, barbershopID, id string) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND barbershop_id = $2`
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id, barbershopID); err != nil {
		return nil, err
	}
	return &appt, nil
}

// UpdateStatus moves an appointment from one status to another. It reports false when the row was
// no longer in the expected status.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus) (bool, error) {
	const query = `UPDATE appointments SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update appointment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update appointment status rows: %w", err)
	}
	return affected > 0, nil
}

// List returns appointments with optional filtering and pagination.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	base := "FROM appointments WHERE barbershop_id = $1"
	args := []interface{}{filter.BarbershopID}
	var conditions []string

	if filter.BarberID != "" {
		conditions = append(conditions, fmt.Sprintf("barber_id = $%d", len(args)+1))
		args = append(args, filter.BarberID)
	}
	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("date < $%d", len(args)+1))
		args = append(args, filter.To.UTC())
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date %s LIMIT %d OFFSET %d", appointmentColumns, base, order, size, offset)
	var appts []models.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	return appts, total, nil
}
