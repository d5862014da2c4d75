//go:generate go run go.uber.org/mock/mockgen -source=supervisor.go -destination=../mocks/mock_worker.go -package=mocks

// Package workers runs the background maintenance loops under a
// panic-recovering supervisor.
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"chat-relay/errors"
)

const waitTimeBeforeRestart = 200 * time.Millisecond

// Worker is a long-running loop. It doesn't protect itself; the
// supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

// workerName uses reflection to name a worker for logs, avoiding manual
// naming in the interface.
func workerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Supervisor runs each worker in a goroutine, recovers panics, restarts
// failed workers, and shuts down cleanly when the parent context is
// canceled. A failure in one worker must not stop the supervisor itself.
type Supervisor struct {
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *slog.Logger
	workers []Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log}
}

func (s *Supervisor) Add(worker ...Worker) *Supervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every registered worker under a supervised context derived
// from ctx and blocks until they all finish.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer s.cancel()

	for _, worker := range s.workers {
		s.start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Stop cancels the supervised context, signaling all workers to exit.
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Supervisor) start(ctx context.Context, worker Worker) {
	s.wg.Add(1)
	name := workerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", name))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart
				s.log.Info(fmt.Sprintf("Worker finished : %s", name))
				return
			}
			if ctx.Err() != nil {
				return
			}

			s.log.Warn(fmt.Sprintf("Worker failed, restarting : %s", name), "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(waitTimeBeforeRestart):
			}
		}
	}()
}
