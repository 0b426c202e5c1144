package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/events"
	"github.com/noah-isme/barbershop-api/pkg/jobs"
)

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// EventService fans appointment changes out to the event stream and the audit trail. It runs on the
// background queue, so delivery is at least once.
type EventService struct {
	publisher events.Publisher
	audit     auditWriter
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEventService constructs an EventService. audit and metrics may be nil.
func NewEventService(publisher events.Publisher, audit auditWriter, metrics *MetricsService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{publisher: publisher, audit: audit, metrics: metrics, logger: logger}
}

// Register binds the appointment job types to router.
func (s *EventService) Register(router *jobs.Router) {
	router.Register(models.EventAppointmentBooked, s.HandleAppointmentEvent)
	router.Register(models.EventAppointmentStatusChanged, s.HandleAppointmentEvent)
}

// HandleAppointmentEvent publishes the event keyed by barber, then records it in the audit trail.
func (s *EventService) HandleAppointmentEvent(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.AppointmentEvent)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, events.Event{Type: event.Type, Key: event.BarberID, Payload: event, RequestID: event.RequestID})
		s.metrics.RecordEvent(event.Type, err)
		if err != nil {
			return fmt.Errorf("publish %s: %w", event.Type, err)
		}
	}

	if s.audit == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit payload: %w", err)
	}
	// The job id keys the row so a retried job cannot audit twice.
	entry := &models.AuditLog{
		ID:           job.ID,
		BarbershopID: stringPtr(event.BarbershopID),
		Action:       auditActionFor(event),
		Resource:     "appointment",
		ResourceID:   stringPtr(event.AppointmentID),
		Payload:      body,
		RequestID:    event.RequestID,
		CreatedAt:    event.OccurredAt,
	}
	if event.ActorID != "" {
		entry.UserID = stringPtr(event.ActorID)
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		return fmt.Errorf("audit %s: %w", event.Type, err)
	}
	s.logger.Debug("appointment event handled", zap.String("type", event.Type), zap.String("appointment_id", event.AppointmentID))
	return nil
}

func auditActionFor(event models.AppointmentEvent) string {
	if event.Type == models.EventAppointmentBooked {
		return models.AuditActionAppointmentBook
	}
	switch event.Status {
	case models.AppointmentCompleted:
		return models.AuditActionAppointmentComplete
	case models.AppointmentCancelled:
		return models.AuditActionAppointmentCancel
	default:
		return event.Type
	}
}

func stringPtr(v string) *string {
	return &v
}
