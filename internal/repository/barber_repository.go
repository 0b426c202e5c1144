package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

// BarberRepository provides access to barbers.
type BarberRepository struct {
	db *sqlx.DB
}

// NewBarberRepository constructs a barber repository.
func NewBarberRepository(db *sqlx.DB) *BarberRepository {
	return &BarberRepository{db: db}
}

// FindByID loads a barber scoped to its barbershop.
func (r *BarberRepository) FindByID(ctx context.Context, barbershopID, id string) (*models.Barber, error) {
	const query = `SELECT id, barbershop_id, name, active, created_at, updated_at FROM barbers WHERE id = $1 AND barbershop_id = $2`
	var barber models.Barber
	if err := r.db.GetContext(ctx, &barber, query, id, barbershopID); err != nil {
		return nil, err
	}
	return &barber, nil
}

// ListByBarbershop returns the barbers of a shop ordered by name.
func (r *BarberRepository) ListByBarbershop(ctx context.Context, barbershopID string, activeOnly bool) ([]models.Barber, error) {
	query := `SELECT id, barbershop_id, name, active, created_at, updated_at FROM barbers WHERE barbershop_id = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY name ASC`
	var barbers []models.Barber
	if err := r.db.SelectContext(ctx, &barbers, query, barbershopID); err != nil {
		return nil, fmt.Errorf("list barbers: %w", err)
	}
	return barbers, nil
}
