package schedule

import (
	"context"
	"time"

	"github.com/xucheng2024/clinic-booking/internal/clinic"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// SlotCount is one row of the per-date availability query.
type SlotCount struct {
	VisitTime    string `json:"visit_time"` // "HH:MM:00"
	BookingCount int    `json:"booking_count"`
}

// AvailabilitySource queries live booking counts, one call per date.
type AvailabilitySource interface {
	GetSlotAvailability(ctx context.Context, clinicID, date string) ([]SlotCount, error)
}

// ClinicSource resolves clinic info (business hours, timezone).
type ClinicSource interface {
	Get(ctx context.Context, clinicID string) (*clinic.Info, error)
}

// AvailabilityService produces the annotated slot list for a clinic and date.
type AvailabilityService struct {
	source   AvailabilitySource
	clinics  ClinicSource
	gen      *Generator
	capacity int
	logger   *logging.Logger
	now      func() time.Time
}

// NewAvailabilityService creates an availability service.
func NewAvailabilityService(source AvailabilitySource, clinics ClinicSource, gen *Generator, capacity int, logger *logging.Logger) *AvailabilityService {
	if source == nil {
		panic("schedule: availability source required")
	}
	if clinics == nil {
		panic("schedule: clinic source required")
	}
	if gen == nil {
		gen = NewGenerator(0, 0)
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityService{
		source:   source,
		clinics:  clinics,
		gen:      gen,
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Tests only.
func (s *AvailabilityService) WithClock(now func() time.Time) *AvailabilityService {
	s.now = now
	return s
}

// DaySlots returns the annotated slots for the clinic on the given date.
// Closed days and out-of-horizon dates yield an empty list. If the count
// query fails every candidate is reported available: availability is a hint,
// the authoritative capacity check happens again at commit time.
func (s *AvailabilityService) DaySlots(ctx context.Context, clinicID string, date time.Time) ([]Slot, error) {
	info, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	// The caller supplies a calendar date; rebuild it at midnight in the
	// clinic's own timezone rather than shifting the instant.
	loc := info.Location()
	localDate := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	window, err := info.BusinessHours.ResolveDay(localDate.Weekday())
	if err != nil {
		return []Slot{}, nil
	}

	candidates := s.gen.Candidates(window, localDate, s.now())
	if len(candidates) == 0 {
		return []Slot{}, nil
	}

	counts := make(map[string]int, len(candidates))
	rows, err := s.source.GetSlotAvailability(ctx, clinicID, localDate.Format("2006-01-02"))
	if err != nil {
		s.logger.Warn("schedule: count query failed, treating all slots as open",
			"error", err, "clinic_id", clinicID)
	} else {
		for _, row := range rows {
			counts[row.VisitTime] = row.BookingCount
		}
	}

	return Annotate(candidates, counts, s.capacity), nil
}
