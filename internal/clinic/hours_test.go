package clinic

import (
	"errors"
	"testing"
	"time"
)

func testInfo() *Info {
	return &Info{
		ClinicID: "clinic-1",
		Timezone: "America/New_York",
		BusinessHours: BusinessHours{
			Monday:    &DayHours{Open: "09:00", Close: "18:00"},
			Tuesday:   &DayHours{Open: "09:00", Close: "18:00"},
			Wednesday: &DayHours{Open: "09:00", Close: "18:00"},
			Thursday:  &DayHours{Open: "09:00", Close: "18:00"},
			Friday:    &DayHours{Open: "09:00", Close: "17:00"},
			Saturday:  nil, // Closed
			Sunday:    nil, // Closed
		},
	}
}

func TestResolveDay(t *testing.T) {
	hours := testInfo().BusinessHours

	window, err := hours.ResolveDay(time.Monday)
	if err != nil {
		t.Fatalf("ResolveDay(Monday) returned error: %v", err)
	}
	if window.OpenMinutes != 9*60 || window.CloseMinutes != 18*60 {
		t.Errorf("unexpected window: %+v", window)
	}

	if _, err := hours.ResolveDay(time.Saturday); !errors.Is(err, ErrClosedDay) {
		t.Errorf("expected ErrClosedDay for Saturday, got %v", err)
	}
}

func TestResolveDayFailsClosed(t *testing.T) {
	tests := []struct {
		name  string
		hours *DayHours
	}{
		{"missing day", nil},
		{"bad open", &DayHours{Open: "late", Close: "18:00"}},
		{"bad close", &DayHours{Open: "09:00", Close: "whenever"}},
		{"close before open", &DayHours{Open: "18:00", Close: "09:00"}},
		{"zero-width window", &DayHours{Open: "09:00", Close: "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours := BusinessHours{Monday: tt.hours}
			if _, err := hours.ResolveDay(time.Monday); !errors.Is(err, ErrClosedDay) {
				t.Errorf("expected ErrClosedDay, got %v", err)
			}
		})
	}
}

func TestIsWithinHours(t *testing.T) {
	info := testInfo()
	loc, _ := time.LoadLocation("America/New_York")

	// Monday 10 AM EST - open
	if !info.IsWithinHours(time.Date(2025, 12, 8, 10, 0, 0, 0, loc)) {
		t.Error("expected clinic to be open Monday 10 AM")
	}

	// Saturday 10 AM EST - closed
	if info.IsWithinHours(time.Date(2025, 12, 13, 10, 0, 0, 0, loc)) {
		t.Error("expected clinic to be closed Saturday")
	}

	// Monday 7 AM EST - before opening
	if info.IsWithinHours(time.Date(2025, 12, 8, 7, 0, 0, 0, loc)) {
		t.Error("expected clinic to be closed at 7 AM")
	}

	// Monday 6 PM EST - close bound is exclusive
	if info.IsWithinHours(time.Date(2025, 12, 8, 18, 0, 0, 0, loc)) {
		t.Error("expected close bound to be exclusive")
	}

	// Instant in another zone resolves against clinic local time:
	// 15:00 UTC Monday is 10:00 in New York.
	if !info.IsWithinHours(time.Date(2025, 12, 8, 15, 0, 0, 0, time.UTC)) {
		t.Error("expected UTC instant to resolve in clinic timezone")
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	info := &Info{Timezone: "Neverland/Nowhere"}
	if got := info.Location(); got != time.UTC {
		t.Errorf("expected UTC fallback, got %v", got)
	}
}
