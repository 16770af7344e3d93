// Package notify surfaces booking outcomes on the user-facing channel.
package notify

import (
	"github.com/xucheng2024/clinic-booking/internal/visits"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// LogNotifier writes notifications to the structured log. It stands in for
// the toast channel when no richer sink is wired.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

var _ visits.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) BookingConfirmed(v visits.Visit) {
	n.logger.Info("notification: booking confirmed",
		"visit_id", v.ID, "clinic_id", v.ClinicID, "visit_time", v.VisitTime)
}

func (n *LogNotifier) BookingFailed(err error) {
	n.logger.Warn("notification: booking failed", "reason", err)
}

func (n *LogNotifier) CancelConfirmed(visitID string) {
	n.logger.Info("notification: visit canceled", "visit_id", visitID)
}

func (n *LogNotifier) CancelFailed(visitID string, err error) {
	n.logger.Warn("notification: cancel failed", "visit_id", visitID, "reason", err)
}
