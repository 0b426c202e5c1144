package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
)

func TestAuditRepositoryCreateIsIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	at := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	entry := &models.AuditLog{
		ID:           "job-1",
		BarbershopID: strPtr("shop-1"),
		Action:       models.AuditActionAppointmentBook,
		Resource:     "appointment",
		ResourceID:   strPtr("appt-1"),
		Payload:      []byte(`{"type":"appointment.booked"}`),
		RequestID:    "req-1",
		CreatedAt:    at,
	}
	mock.ExpectExec(`INSERT INTO audit_logs .+ ON CONFLICT \(id\) DO NOTHING`).
		WithArgs("job-1", "shop-1", nil, models.AuditActionAppointmentBook, "appointment", "appt-1", entry.Payload, "req-1", "", "", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec(`INSERT INTO audit_logs`).WillReturnError(errors.New("connection reset"))

	entry := &models.AuditLog{Action: models.AuditActionScheduleDelete, Resource: "schedule"}
	err := repo.Create(context.Background(), entry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.AuditActionScheduleDelete)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}
