// Package visits owns the appointment lifecycle: the local visit list, the
// booking and cancellation coordinators, and their optimistic state machine.
package visits

import "time"

// Status is the lifecycle state of a visit record.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCheckedIn Status = "checked-in"
	StatusCanceled  Status = "canceled"
)

// Visit is an appointment record. The remote service owns these; the client
// holds at most a transient shadow copy during the optimistic window.
type Visit struct {
	ID           string    `json:"id"`
	UserRecordID string    `json:"user_row_id"`
	ClinicID     string    `json:"clinic_id"`
	BookTime     time.Time `json:"book_time"`
	VisitTime    time.Time `json:"visit_time"`
	Status       Status    `json:"status"`
	IsFirst      bool      `json:"is_first"`
	// IsOptimistic is a transient client-only flag: true from creation until
	// the remote call resolves.
	IsOptimistic bool `json:"is_optimistic,omitempty"`
}

// Terminal reports whether the visit is excluded from active-appointment
// checks. Only booked blocks a same-day booking; checked-in deliberately
// does not.
func (v Visit) Terminal() bool {
	return v.Status == StatusCanceled || v.Status == StatusCheckedIn
}
