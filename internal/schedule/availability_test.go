package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xucheng2024/clinic-booking/internal/clinic"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

type stubCounts struct {
	rows  []SlotCount
	err   error
	calls int
}

func (s *stubCounts) GetSlotAvailability(ctx context.Context, clinicID, date string) ([]SlotCount, error) {
	s.calls++
	return s.rows, s.err
}

type stubClinics struct {
	info *clinic.Info
	err  error
}

func (s *stubClinics) Get(ctx context.Context, clinicID string) (*clinic.Info, error) {
	return s.info, s.err
}

func availabilityInfo() *clinic.Info {
	return &clinic.Info{
		ClinicID: "clinic-1",
		Name:     "Downtown Clinic",
		Timezone: "UTC",
		BusinessHours: clinic.BusinessHours{
			Monday:  &clinic.DayHours{Open: "09:00", Close: "11:00"},
			Tuesday: &clinic.DayHours{Open: "09:00", Close: "11:00"},
		},
	}
}

func TestDaySlotsAnnotatesCounts(t *testing.T) {
	source := &stubCounts{rows: []SlotCount{{VisitTime: "09:00:00", BookingCount: 2}}}
	svc := NewAvailabilityService(source, &stubClinics{info: availabilityInfo()}, nil, 0, logging.Default()).
		WithClock(func() time.Time { return monday(7, 0) })

	slots, err := svc.DaySlots(context.Background(), "clinic-1", monday(0, 0).AddDate(0, 0, 1))
	require.NoError(t, err)

	require.Len(t, slots, 4)
	assert.True(t, slots[0].IsFull)
	assert.Equal(t, 2, slots[0].BookingCount)
	for _, slot := range slots[1:] {
		assert.True(t, slot.IsAvailable, "slot %s", slot.TimeKey)
	}
}

func TestDaySlotsClosedDayIsEmpty(t *testing.T) {
	source := &stubCounts{}
	svc := NewAvailabilityService(source, &stubClinics{info: availabilityInfo()}, nil, 0, logging.Default()).
		WithClock(func() time.Time { return monday(7, 0) })

	// 2026-06-06 is a Saturday with no configured hours.
	slots, err := svc.DaySlots(context.Background(), "clinic-1", monday(0, 0).AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.Zero(t, source.calls, "closed days must not hit the count query")
}

func TestDaySlotsCountFailureFallsOpen(t *testing.T) {
	source := &stubCounts{err: errors.New("upstream down")}
	svc := NewAvailabilityService(source, &stubClinics{info: availabilityInfo()}, nil, 0, logging.Default()).
		WithClock(func() time.Time { return monday(7, 0) })

	slots, err := svc.DaySlots(context.Background(), "clinic-1", monday(0, 0))
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	for _, slot := range slots {
		assert.True(t, slot.IsAvailable, "slot %s", slot.TimeKey)
		assert.Zero(t, slot.BookingCount)
	}
}

func TestDaySlotsClinicLookupFailurePropagates(t *testing.T) {
	svc := NewAvailabilityService(&stubCounts{}, &stubClinics{err: errors.New("not found")}, nil, 0, logging.Default())

	_, err := svc.DaySlots(context.Background(), "clinic-1", monday(0, 0))
	assert.Error(t, err)
}

func TestDaySlotsOutOfHorizonIsEmpty(t *testing.T) {
	source := &stubCounts{}
	svc := NewAvailabilityService(source, &stubClinics{info: availabilityInfo()}, nil, 0, logging.Default()).
		WithClock(func() time.Time { return monday(7, 0) })

	// Monday five weeks out: inside business hours, outside the horizon.
	slots, err := svc.DaySlots(context.Background(), "clinic-1", monday(0, 0).AddDate(0, 0, 35))
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.Zero(t, source.calls)
}
