package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const insertAuditLog = `
INSERT INTO audit_logs (id, barbershop_id, user_id, action, resource, resource_id, payload, request_id, ip_address, user_agent, created_at)
VALUES (:id, :barbershop_id, :user_id, :action, :resource, :resource_id, :payload, :request_id, :ip_address, :user_agent, :created_at)
ON CONFLICT (id) DO NOTHING`

// Create appends entry to the trail. Writing an id twice is a no-op, which keeps retried jobs from
// duplicating rows.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx, insertAuditLog, entry); err != nil {
		return fmt.Errorf("insert audit log %s: %w", entry.Action, err)
	}
	return nil
}
