package visits

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xucheng2024/clinic-booking/internal/clinic"
	"github.com/xucheng2024/clinic-booking/internal/remote"
	"github.com/xucheng2024/clinic-booking/internal/schedule"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

var visitsTracer = otel.Tracer("clinic.internal.visits")

// RemoteAPI is the slice of the visit-records client the coordinators use.
type RemoteAPI interface {
	CreateVisit(ctx context.Context, params remote.CreateVisitParams) (string, error)
	UpdateVisit(ctx context.Context, visitID, status string) error
	GetUserVisits(ctx context.Context, clinicID, userRowID string) ([]remote.VisitRecord, error)
}

// ClinicSource resolves clinic info for execution-time gating.
type ClinicSource interface {
	Get(ctx context.Context, clinicID string) (*clinic.Info, error)
}

// Notifier surfaces outcomes to the user. Each coordinator attempt produces
// exactly one notification, success or failure.
type Notifier interface {
	BookingConfirmed(v Visit)
	BookingFailed(err error)
	CancelConfirmed(visitID string)
	CancelFailed(visitID string, err error)
}

// BookRequest asks for one slot on one day.
type BookRequest struct {
	UserRecordID string    `json:"user_row_id"`
	ClinicID     string    `json:"clinic_id"`
	VisitTime    time.Time `json:"visit_time"`
}

// BookingCoordinator drives one booking attempt at a time through
// validate → optimistic apply → commit → reconcile.
type BookingCoordinator struct {
	remote      RemoteAPI
	clinics     ClinicSource
	list        *ListState
	notifier    Notifier
	logger      *logging.Logger
	horizonDays int
	now         func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// NewBookingCoordinator constructs a booking coordinator.
func NewBookingCoordinator(remoteAPI RemoteAPI, clinics ClinicSource, list *ListState, notifier Notifier, horizonDays int, logger *logging.Logger) *BookingCoordinator {
	if remoteAPI == nil {
		panic("visits: remote API required")
	}
	if clinics == nil {
		panic("visits: clinic source required")
	}
	if list == nil {
		panic("visits: list state required")
	}
	if notifier == nil {
		panic("visits: notifier required")
	}
	if horizonDays <= 0 {
		horizonDays = schedule.DefaultHorizonDays
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingCoordinator{
		remote:      remoteAPI,
		clinics:     clinics,
		list:        list,
		notifier:    notifier,
		logger:      logger,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

// WithClock overrides the coordinator clock. Tests only.
func (c *BookingCoordinator) WithClock(now func() time.Time) *BookingCoordinator {
	c.now = now
	return c
}

// Book runs one booking attempt. A second call while an attempt is in flight
// is dropped with ErrAttemptInFlight and produces no notification; every
// other outcome produces exactly one.
func (c *BookingCoordinator) Book(ctx context.Context, req BookRequest) (*Visit, error) {
	if !c.begin() {
		return nil, ErrAttemptInFlight
	}
	defer c.end()

	ctx, span := visitsTracer.Start(ctx, "visits.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.clinic_id", req.ClinicID),
		attribute.String("clinic.user_row_id", req.UserRecordID),
	)

	visit, err := c.book(ctx, req)
	if err != nil {
		span.RecordError(err)
		c.notifier.BookingFailed(err)
		return nil, err
	}

	c.logger.Info("booking committed",
		"visit_id", visit.ID,
		"clinic_id", visit.ClinicID,
		"visit_time", visit.VisitTime,
	)
	c.notifier.BookingConfirmed(*visit)
	return visit, nil
}

func (c *BookingCoordinator) book(ctx context.Context, req BookRequest) (*Visit, error) {
	now := c.now()

	info, err := c.clinics.Get(ctx, req.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("visits: load clinic: %w", err)
	}
	loc := info.Location()

	// Client-side gates run before any remote write and before the
	// optimistic mutation.
	if days := schedule.DaysAhead(req.VisitTime, now, loc); days < 0 || days > c.horizonDays {
		return nil, schedule.ErrHorizonExceeded
	}
	if !info.IsWithinHours(req.VisitTime) {
		return nil, clinic.ErrClosedDay
	}

	// Re-fetch instead of trusting the cached list; client state may be
	// stale. This read-then-write check is racy against a second device and
	// the server remains the final arbiter.
	records, err := c.remote.GetUserVisits(ctx, req.ClinicID, req.UserRecordID)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	dayStart := time.Date(req.VisitTime.In(loc).Year(), req.VisitTime.In(loc).Month(), req.VisitTime.In(loc).Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, rec := range records {
		if Status(rec.Status) != StatusBooked {
			continue
		}
		bt := rec.BookTime.In(loc)
		if !bt.Before(dayStart) && bt.Before(dayEnd) {
			return nil, ErrDuplicateBooking
		}
	}

	temp := Visit{
		ID:           "tmp-" + uuid.NewString(),
		UserRecordID: req.UserRecordID,
		ClinicID:     req.ClinicID,
		BookTime:     req.VisitTime,
		VisitTime:    req.VisitTime,
		Status:       StatusBooked,
		IsOptimistic: true,
	}
	c.list.Apply(OptimisticInsert{Visit: temp})

	serverID, err := c.remote.CreateVisit(ctx, remote.CreateVisitParams{
		UserRowID: req.UserRecordID,
		ClinicID:  req.ClinicID,
		BookTime:  req.VisitTime,
		VisitTime: req.VisitTime,
		Status:    string(StatusBooked),
		IsFirst:   false,
	})
	if err != nil {
		// No partial state survives a failed commit.
		c.list.Apply(RollbackRemove{ID: temp.ID})
		return nil, mapRemoteError(err)
	}

	c.list.Apply(CommitReplace{TempID: temp.ID, ServerID: serverID})
	committed := temp
	committed.ID = serverID
	committed.IsOptimistic = false
	return &committed, nil
}

func (c *BookingCoordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

func (c *BookingCoordinator) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}
