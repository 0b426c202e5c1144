package models

import "time"

// Barbershop is the tenant that owns barbers, services and schedules.
type Barbershop struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Slug                string    `db:"slug" json:"slug"`
	Timezone            string    `db:"timezone" json:"timezone"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Barber is a staff member appointments are booked against.
type Barber struct {
	ID           string    `db:"id" json:"id"`
	BarbershopID string    `db:"barbershop_id" json:"barbershop_id"`
	Name         string    `db:"name" json:"name"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Service is a catalog item offered by a barbershop.
type Service struct {
	ID              string    `db:"id" json:"id"`
	BarbershopID    string    `db:"barbershop_id" json:"barbershop_id"`
	Name            string    `db:"name" json:"name"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateSlotDurationRequest changes the slot length used for every barber of a shop.
type UpdateSlotDurationRequest struct {
	SlotDurationMinutes int `json:"slot_duration_minutes" validate:"required,min=5,max=480"`
}
