package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

// CatalogRepository provides access to the services a barbershop offers.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a catalog repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindByID loads a catalog service scoped to its barbershop.
func (r *CatalogRepository) FindByID(ctx context.Context, barbershopID, id string) (*models.Service, error) {
	const query = `SELECT id, barbershop_id, name, duration_minutes, price_cents, active, created_at, updated_at FROM services WHERE id = $1 AND barbershop_id = $2`
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id, barbershopID); err != nil {
		return nil, err
	}
	return &svc, nil
}

// ListByBarbershop returns active services ordered by name.
func (r *CatalogRepository) ListByBarbershop(ctx context.Context, barbershopID string) ([]models.Service, error) {
	const query = `SELECT id, barbershop_id, name, duration_minutes, price_cents, active, created_at, updated_at FROM services WHERE barbershop_id = $1 AND active = TRUE ORDER BY name ASC`
	var services []models.Service
	if err := r.db.SelectContext(ctx, &services, query, barbershopID); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}
