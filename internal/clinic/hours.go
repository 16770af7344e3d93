// Package clinic holds clinic business-hours logic and the cached clinic info store.
package clinic

import (
	"errors"
	"time"
)

// ErrClosedDay indicates the clinic is closed on the requested day, or that
// no hours are configured for it. Missing data is treated as closed.
var ErrClosedDay = errors.New("clinic: closed on requested day")

// DayHours represents the opening hours for a single day.
// Nil means the clinic is closed that day.
type DayHours struct {
	Open  string `json:"open"`  // "09:00" in 24-hour format
	Close string `json:"close"` // "18:00" in 24-hour format
}

// BusinessHours maps day names to their hours.
type BusinessHours struct {
	Monday    *DayHours `json:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty"`
}

// GetHoursForDay returns the hours for the given weekday, or nil if closed.
func (b *BusinessHours) GetHoursForDay(day time.Weekday) *DayHours {
	switch day {
	case time.Sunday:
		return b.Sunday
	case time.Monday:
		return b.Monday
	case time.Tuesday:
		return b.Tuesday
	case time.Wednesday:
		return b.Wednesday
	case time.Thursday:
		return b.Thursday
	case time.Friday:
		return b.Friday
	case time.Saturday:
		return b.Saturday
	default:
		return nil
	}
}

// DayWindow is a resolved open/close window expressed in minutes of the day.
type DayWindow struct {
	OpenMinutes  int
	CloseMinutes int
}

// ResolveDay resolves the open/close window for a weekday.
// Returns ErrClosedDay when the day is closed, unset, or malformed ("HH:MM"
// that does not parse). Never fails open.
func (b *BusinessHours) ResolveDay(day time.Weekday) (DayWindow, error) {
	hours := b.GetHoursForDay(day)
	if hours == nil {
		return DayWindow{}, ErrClosedDay
	}

	openTime, err := time.Parse("15:04", hours.Open)
	if err != nil {
		return DayWindow{}, ErrClosedDay
	}
	closeTime, err := time.Parse("15:04", hours.Close)
	if err != nil {
		return DayWindow{}, ErrClosedDay
	}

	window := DayWindow{
		OpenMinutes:  openTime.Hour()*60 + openTime.Minute(),
		CloseMinutes: closeTime.Hour()*60 + closeTime.Minute(),
	}
	if window.CloseMinutes <= window.OpenMinutes {
		return DayWindow{}, ErrClosedDay
	}
	return window, nil
}

// Info is the clinic record consumed by the scheduling core.
type Info struct {
	ClinicID      string        `json:"clinic_id"`
	Name          string        `json:"name,omitempty"`
	Timezone      string        `json:"timezone"` // e.g., "America/New_York"
	BusinessHours BusinessHours `json:"business_hours"`
}

// Location resolves the clinic timezone, falling back to UTC.
func (i *Info) Location() *time.Location {
	loc, err := time.LoadLocation(i.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsWithinHours reports whether the instant falls inside the clinic's open
// window for that day, in the clinic's local time. Business hours may change
// between slot generation and commit, so the booking path calls this again at
// execution time.
func (i *Info) IsWithinHours(t time.Time) bool {
	localTime := t.In(i.Location())

	window, err := i.BusinessHours.ResolveDay(localTime.Weekday())
	if err != nil {
		return false
	}

	currentMinutes := localTime.Hour()*60 + localTime.Minute()
	return currentMinutes >= window.OpenMinutes && currentMinutes < window.CloseMinutes
}
