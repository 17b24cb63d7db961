// Package alerting provides monitor.Dispatcher implementations.
package alerting

import (
	"context"
	"log/slog"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
)

// LogDispatcher writes alerts to a structured logger at WARN level.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a LogDispatcher. A nil logger uses slog.Default().
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, alert monitor.Alert) error {
	d.logger.WarnContext(ctx, "SECURITY ALERT",
		"severity", alert.Severity,
		"kind", alert.Kind,
		"actor_id", alert.ActorID,
		"source_address", alert.SourceAddress,
		"details", alert.Details,
		"timestamp", alert.Timestamp,
	)
	return nil
}
