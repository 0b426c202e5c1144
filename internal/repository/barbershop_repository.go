package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

// BarbershopRepository provides access to tenant rows.
type BarbershopRepository struct {
	db *sqlx.DB
}

// NewBarbershopRepository constructs a barbershop repository.
func NewBarbershopRepository(db *sqlx.DB) *BarbershopRepository {
	return &BarbershopRepository{db: db}
}

const barbershopColumns = `id, name, slug, timezone, slot_duration_minutes, created_at, updated_at`

// FindByID loads a barbershop by id.
func (r *BarbershopRepository) FindByID(ctx context.Context, id string) (*models.Barbershop, error) {
	query := `SELECT ` + barbershopColumns + ` FROM barbershops WHERE id = $1`
	var shop models.Barbershop
	if err := r.db.GetContext(ctx, &shop, query, id); err != nil {
		return nil, err
	}
	return &shop, nil
}

// UpdateSlotDuration changes the slot length applied to every barber of the shop.
func (r *BarbershopRepository) UpdateSlotDuration(ctx context.Context, id string, minutes int) error {
	const query = `UPDATE barbershops SET slot_duration_minutes = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, minutes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update slot duration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update slot duration rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
