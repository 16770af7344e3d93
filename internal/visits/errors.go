package visits

import (
	"errors"

	"github.com/xucheng2024/clinic-booking/internal/remote"
)

var (
	// ErrDuplicateBooking means the user already holds a booked visit within
	// the target calendar day.
	ErrDuplicateBooking = errors.New("visits: user already holds a booked visit that day")
	// ErrSlotFull means the slot reached capacity by the time the commit
	// call executed.
	ErrSlotFull = errors.New("visits: slot capacity reached")
	// ErrAttemptInFlight means a coordinator attempt is already running.
	// Repeated submissions are dropped, not queued.
	ErrAttemptInFlight = errors.New("visits: attempt already in flight")
	// ErrVisitNotFound means the visit id is unknown to the local list.
	ErrVisitNotFound = errors.New("visits: visit not found")
)

// Server-side rejection codes on the visit-records API.
const (
	codeDuplicateBooking = "duplicate_booking"
	codeSlotFull         = "slot_full"
)

// mapRemoteError translates visit-API rejections into the local taxonomy.
// Timeouts and network failures pass through as remote sentinels.
func mapRemoteError(err error) error {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case codeDuplicateBooking:
			return ErrDuplicateBooking
		case codeSlotFull:
			return ErrSlotFull
		}
	}
	return err
}
