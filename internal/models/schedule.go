package models

import "time"

// DaySchedule holds working hours for one weekday. A nil BarberID marks the barbershop default;
// a barber row overrides the default for that barber only.
type DaySchedule struct {
	ID           string    `db:"id" json:"id"`
	BarbershopID string    `db:"barbershop_id" json:"barbershop_id"`
	BarberID     *string   `db:"barber_id" json:"barber_id,omitempty"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	Active       bool      `db:"active" json:"active"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	PauseStart   *string   `db:"pause_start" json:"pause_start,omitempty"`
	PauseEnd     *string   `db:"pause_end" json:"pause_end,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// HasPause reports whether both pause bounds are configured.
func (s *DaySchedule) HasPause() bool {
	return s != nil && s.PauseStart != nil && s.PauseEnd != nil && *s.PauseStart != "" && *s.PauseEnd != ""
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	BarbershopID string
	BarberID     *string
	DefaultsOnly bool
}

// UpsertDayScheduleRequest configures one weekday for the shop default or a single barber.
type UpsertDayScheduleRequest struct {
	BarberID   *string `json:"barber_id"`
	DayOfWeek  int     `json:"day_of_week" validate:"min=0,max=6"`
	Active     bool    `json:"active"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    string  `json:"end_time" validate:"required"`
	PauseStart *string `json:"pause_start"`
	PauseEnd   *string `json:"pause_end"`
}

// DayAvailability lists the free slots of one calendar day.
type DayAvailability struct {
	Date  string      `json:"date"`
	Slots []time.Time `json:"slots"`
}
