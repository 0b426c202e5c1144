package models

import "time"

// AppointmentStatus enumerates the appointment lifecycle.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is a booked slot. Cancelled rows never occupy a slot.
type Appointment struct {
	ID           string            `db:"id" json:"id"`
	BarbershopID string            `db:"barbershop_id" json:"barbershop_id"`
	BarberID     string            `db:"barber_id" json:"barber_id"`
	ServiceID    string            `db:"service_id" json:"service_id"`
	ClientID     string            `db:"client_id" json:"client_id"`
	Date         time.Time         `db:"date" json:"date"`
	Status       AppointmentStatus `db:"status" json:"status"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// Occupies reports whether the appointment blocks its slot.
func (a Appointment) Occupies() bool {
	return a.Status != AppointmentCancelled
}

// BookAppointmentRequest is the client payload for reserving a slot.
type BookAppointmentRequest struct {
	BarberID  string    `json:"barber_id" validate:"required"`
	ServiceID string    `json:"service_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
}

// AppointmentFilter describes query params for listing appointments.
type AppointmentFilter struct {
	BarbershopID string
	BarberID     string
	ClientID     string
	Status       AppointmentStatus
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
	SortOrder    string
}

// AppointmentEvent is the payload published when an appointment changes.
type AppointmentEvent struct {
	Type          string            `json:"type"`
	AppointmentID string            `json:"appointment_id"`
	BarbershopID  string            `json:"barbershop_id"`
	BarberID      string            `json:"barber_id"`
	ClientID      string            `json:"client_id"`
	Date          time.Time         `json:"date"`
	Status        AppointmentStatus `json:"status"`
	ActorID       string            `json:"actor_id,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentStatusChanged = "appointment.status_changed"
)
