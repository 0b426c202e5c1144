// Package availability turns a day's working hours into bookable instants.
// Everything here is pure: callers fetch schedules and appointments and pass them in.
package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/barbershop-api/internal/models"
)

// ErrInvalidClock is returned when a stored clock value is not HH:MM.
var ErrInvalidClock = errors.New("invalid clock value")

const minutesPerDay = 24 * 60

// ParseClock converts an HH:MM wall clock string to minutes after local midnight.
// 24:00 is accepted as the end of the day.
func ParseClock(value string) (int, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hours, okH := twoDigits(value[0], value[1])
	minutes, okM := twoDigits(value[3], value[4])
	if !okH || !okM || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	total := hours*60 + minutes
	if total > minutesPerDay {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return total, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Window is a schedule row resolved to minute offsets.
type Window struct {
	Start      int
	End        int
	PauseStart int
	PauseEnd   int
	HasPause   bool
}

// ResolveWindow parses the clock fields of a schedule.
func ResolveWindow(schedule *models.DaySchedule) (Window, error) {
	var w Window
	var err error
	if w.Start, err = ParseClock(schedule.StartTime); err != nil {
		return Window{}, fmt.Errorf("start_time: %w", err)
	}
	if w.End, err = ParseClock(schedule.EndTime); err != nil {
		return Window{}, fmt.Errorf("end_time: %w", err)
	}
	if schedule.HasPause() {
		if w.PauseStart, err = ParseClock(*schedule.PauseStart); err != nil {
			return Window{}, fmt.Errorf("pause_start: %w", err)
		}
		if w.PauseEnd, err = ParseClock(*schedule.PauseEnd); err != nil {
			return Window{}, fmt.Errorf("pause_end: %w", err)
		}
		w.HasPause = true
	}
	return w, nil
}

// Validate checks the ordering rules a stored schedule must satisfy.
func (w Window) Validate() error {
	if w.Start >= w.End {
		return errors.New("start_time must be before end_time")
	}
	if w.HasPause {
		if w.PauseStart >= w.PauseEnd {
			return errors.New("pause_start must be before pause_end")
		}
		if w.PauseStart < w.Start || w.PauseEnd > w.End {
			return errors.New("pause must lie within working hours")
		}
	}
	return nil
}

// Offsets enumerates slot start offsets of the given length. A slot is dropped when it would
// run past closing time or overlap the pause in any way.
func (w Window) Offsets(slotMinutes int) []int {
	if slotMinutes <= 0 || w.End <= w.Start {
		return nil
	}
	offsets := make([]int, 0, (w.End-w.Start)/slotMinutes)
	for t := w.Start; t+slotMinutes <= w.End; t += slotMinutes {
		if w.HasPause && t < w.PauseEnd && t+slotMinutes > w.PauseStart {
			continue
		}
		offsets = append(offsets, t)
	}
	return offsets
}

// ComputeSlots returns the ascending slot instants of date for the given schedule.
// date supplies the calendar day and location; its clock is ignored. A nil or inactive schedule
// yields no slots. Offsets whose wall clock is skipped by a DST transition are left out.
func ComputeSlots(date time.Time, schedule *models.DaySchedule, slotDurationMinutes int) ([]time.Time, error) {
	if schedule == nil || !schedule.Active || slotDurationMinutes <= 0 {
		return []time.Time{}, nil
	}
	window, err := ResolveWindow(schedule)
	if err != nil {
		return nil, err
	}

	offsets := window.Offsets(slotDurationMinutes)
	slots := make([]time.Time, 0, len(offsets))
	year, month, day := date.Date()
	loc := date.Location()
	for _, t := range offsets {
		slot := time.Date(year, month, day, t/60, t%60, 0, 0, loc)
		// A wall clock inside a spring-forward gap does not exist on that day.
		if slot.Hour() != t/60 || slot.Minute() != t%60 {
			continue
		}
		if n := len(slots); n > 0 && !slot.After(slots[n-1]) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// FilterAvailable drops candidates occupied by an appointment and candidates not strictly after now.
// Cancelled appointments never occupy a slot. With a zero tolerance a slot is occupied only by an
// appointment on the same minute; otherwise any appointment closer than tolerance occupies it.
// Candidate order is preserved.
func FilterAvailable(candidates []time.Time, existing []models.Appointment, now time.Time, tolerance time.Duration) []time.Time {
	taken := make([]time.Time, 0, len(existing))
	for _, appt := range existing {
		if appt.Occupies() {
			taken = append(taken, appt.Date)
		}
	}

	available := make([]time.Time, 0, len(candidates))
	for _, slot := range candidates {
		if !slot.After(now) {
			continue
		}
		if occupied(slot, taken, tolerance) {
			continue
		}
		available = append(available, slot)
	}
	return available
}

func occupied(slot time.Time, taken []time.Time, tolerance time.Duration) bool {
	for _, at := range taken {
		if tolerance <= 0 {
			if SameSlot(slot, at) {
				return true
			}
			continue
		}
		diff := slot.Sub(at)
		if diff < 0 {
			diff = -diff
		}
		if diff < tolerance {
			return true
		}
	}
	return false
}

// Normalize is the canonical stored form of a slot instant: UTC, truncated to the minute.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// SameSlot reports whether two instants name the same slot.
func SameSlot(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// Contains reports whether instant is one of slots.
func Contains(slots []time.Time, instant time.Time) bool {
	for _, slot := range slots {
		if SameSlot(slot, instant) {
			return true
		}
	}
	return false
}

// DayBounds returns [midnight, next midnight) of date in loc.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	local := date.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
