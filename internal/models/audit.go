package models

import "time"

// Audit actions. Appointment actions are written by the event job, the rest by the audit middleware.
const (
	AuditActionAppointmentBook     = "APPOINTMENT_BOOK"
	AuditActionAppointmentComplete = "APPOINTMENT_COMPLETE"
	AuditActionAppointmentCancel   = "APPOINTMENT_CANCEL"
	AuditActionScheduleUpsert      = "SCHEDULE_UPSERT"
	AuditActionScheduleDelete      = "SCHEDULE_DELETE"
	AuditActionSlotDurationUpdate  = "SLOT_DURATION_UPDATE"
)

// AuditLog is one row of the audit trail, scoped to the barbershop it concerns.
type AuditLog struct {
	ID           string    `db:"id" json:"id"`
	BarbershopID *string   `db:"barbershop_id" json:"barbershop_id,omitempty"`
	UserID       *string   `db:"user_id" json:"user_id,omitempty"`
	Action       string    `db:"action" json:"action"`
	Resource     string    `db:"resource" json:"resource"`
	ResourceID   *string   `db:"resource_id" json:"resource_id,omitempty"`
	Payload      []byte    `db:"payload" json:"payload,omitempty"`
	RequestID    string    `db:"request_id" json:"request_id,omitempty"`
	IPAddress    string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent    string    `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
