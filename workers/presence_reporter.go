package workers

import (
	"context"
	"log/slog"
	"time"
)

// PresenceStats is implemented by the realtime registry.
type PresenceStats interface {
	Stats() (users, connections, rooms int)
}

// PresenceReporter logs current presence at a fixed interval, giving
// operators a view of live load without a metrics stack.
type PresenceReporter struct {
	registry PresenceStats
	interval time.Duration
	log      *slog.Logger
}

func NewPresenceReporter(registry PresenceStats, interval time.Duration, log *slog.Logger) *PresenceReporter {
	return &PresenceReporter{registry: registry, interval: interval, log: log}
}

func (w *PresenceReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case <-ticker.C:
			users, connections, rooms := w.registry.Stats()
			w.log.Info("presence",
				"users", users,
				"connections", connections,
				"rooms", rooms)
		}
	}
}
