package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGCWorker periodically triggers value-log garbage collection.
// Badger never reclaims value-log space on its own; without this loop the
// store grows monotonically.
type BadgerGCWorker struct {
	db       *badger.DB
	interval time.Duration
	log      *slog.Logger
}

func NewBadgerGCWorker(db *badger.DB, interval time.Duration, log *slog.Logger) *BadgerGCWorker {
	return &BadgerGCWorker{db: db, interval: interval, log: log}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case <-ticker.C:
			// Repeat until one cycle finds nothing to rewrite.
			for {
				err := w.db.RunValueLogGC(0.5)
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					w.log.Warn("value log GC failed", "error", err)
					break
				}
			}
		}
	}
}
