package visits

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// CancellationCoordinator drives the cancel transaction. No optimistic phase:
// the remote update runs first and the local record is dropped only on
// success, so failure needs no rollback.
type CancellationCoordinator struct {
	remote   RemoteAPI
	list     *ListState
	notifier Notifier
	logger   *logging.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewCancellationCoordinator constructs a cancellation coordinator.
func NewCancellationCoordinator(remoteAPI RemoteAPI, list *ListState, notifier Notifier, logger *logging.Logger) *CancellationCoordinator {
	if remoteAPI == nil {
		panic("visits: remote API required")
	}
	if list == nil {
		panic("visits: list state required")
	}
	if notifier == nil {
		panic("visits: notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CancellationCoordinator{
		remote:   remoteAPI,
		list:     list,
		notifier: notifier,
		logger:   logger,
	}
}

// Cancel cancels a visit on the server, then removes it from the local list.
// Repeated invocations while one is in flight are dropped without a
// notification; completed attempts notify exactly once.
func (c *CancellationCoordinator) Cancel(ctx context.Context, visitID string) error {
	if !c.begin() {
		return ErrAttemptInFlight
	}
	defer c.end()

	ctx, span := visitsTracer.Start(ctx, "visits.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.visit_id", visitID))

	if err := c.remote.UpdateVisit(ctx, visitID, string(StatusCanceled)); err != nil {
		err = mapRemoteError(err)
		span.RecordError(err)
		c.notifier.CancelFailed(visitID, err)
		return err
	}

	// Drop the canceled record immediately so no stale entry lingers.
	c.list.Apply(RollbackRemove{ID: visitID})

	c.logger.Info("visit canceled", "visit_id", visitID)
	c.notifier.CancelConfirmed(visitID)
	return nil
}

func (c *CancellationCoordinator) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

func (c *CancellationCoordinator) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}
