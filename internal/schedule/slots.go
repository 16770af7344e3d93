// Package schedule turns clinic business hours into bookable time slots.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/xucheng2024/clinic-booking/internal/clinic"
)

// ErrHorizonExceeded indicates the requested date is in the past or beyond
// the booking horizon.
var ErrHorizonExceeded = errors.New("schedule: date outside booking horizon")

const (
	// DefaultGranularity is the fixed slot width.
	DefaultGranularity = 30 * time.Minute
	// DefaultCapacity is the per-slot booking capacity shared with the remote side.
	// The client never infers capacity dynamically.
	DefaultCapacity = 2
	// DefaultHorizonDays is the hard scheduling horizon: dates further out
	// yield no slots regardless of business hours.
	DefaultHorizonDays = 14
)

// Candidate is a raw slot time before availability annotation.
type Candidate struct {
	Hour   int
	Minute int
}

// TimeKey renders the candidate in the "HH:MM:00" form the remote
// availability query keys its counts by.
func (c Candidate) TimeKey() string {
	return fmt.Sprintf("%02d:%02d:00", c.Hour, c.Minute)
}

// Slot is a candidate annotated with its live booking count.
type Slot struct {
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	BookingCount int    `json:"booking_count"`
	IsAvailable  bool   `json:"is_available"`
	IsFull       bool   `json:"is_full"`
	TimeKey      string `json:"time_key"`
}

// Generator produces candidate slots for a date bounded by a business-hours
// window, the scheduling horizon, and the same-day cutoff.
type Generator struct {
	granularity time.Duration
	horizonDays int
}

// NewGenerator creates a generator. Zero values fall back to the defaults.
func NewGenerator(granularity time.Duration, horizonDays int) *Generator {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Generator{granularity: granularity, horizonDays: horizonDays}
}

// Candidates returns the ordered, fully materialized slot times for date
// within [open, close). The sequence is empty when the date is in the past or
// beyond the horizon, and when the date is today, slots before the next full
// hour after now are excluded.
func (g *Generator) Candidates(window clinic.DayWindow, date time.Time, now time.Time) []Candidate {
	loc := date.Location()
	daysAhead := DaysAhead(date, now, loc)
	if daysAhead < 0 || daysAhead > g.horizonDays {
		return []Candidate{}
	}

	cutoffMinutes := -1
	if daysAhead == 0 {
		local := now.In(loc)
		// Next full hour after now; 10:05 books from 11:00, never earlier.
		cutoffMinutes = (local.Hour() + 1) * 60
	}

	step := int(g.granularity.Minutes())
	candidates := make([]Candidate, 0, (window.CloseMinutes-window.OpenMinutes)/step)
	for m := window.OpenMinutes; m < window.CloseMinutes; m += step {
		if m < cutoffMinutes {
			continue
		}
		candidates = append(candidates, Candidate{Hour: m / 60, Minute: m % 60})
	}
	return candidates
}

// Annotate derives availability for each candidate against the live booking
// counts, keyed by time key. Absent keys count as zero.
func Annotate(candidates []Candidate, counts map[string]int, capacity int) []Slot {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	slots := make([]Slot, 0, len(candidates))
	for _, c := range candidates {
		key := c.TimeKey()
		count := counts[key]
		available := count < capacity
		slots = append(slots, Slot{
			Hour:         c.Hour,
			Minute:       c.Minute,
			BookingCount: count,
			IsAvailable:  available,
			IsFull:       !available,
			TimeKey:      key,
		})
	}
	return slots
}

// DaysAhead returns the number of calendar days between now and date in the
// given location. Rounding absorbs DST-shortened and -lengthened days.
func DaysAhead(date, now time.Time, loc *time.Location) int {
	day := midnight(date, loc)
	today := midnight(now, loc)
	return int(math.Round(day.Sub(today).Hours() / 24))
}

func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
