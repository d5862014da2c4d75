package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/mocks"
)

func TestSupervisor_Restart_On_Panic(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)

	calls := 0
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			calls++
			panic("boom")
		}).
		AnyTimes()

	sup := NewSupervisor(slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go sup.Add(workerMock).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(900 * time.Millisecond)

	req.GreaterOrEqual(calls, 2)
}

func TestSupervisor_Restart_On_Error(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)

	calls := 0
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			calls++
			return fmt.Errorf("transient failure")
		}).
		AnyTimes()

	sup := NewSupervisor(slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go sup.Add(workerMock).Run(ctx)

	time.Sleep(900 * time.Millisecond)

	req.GreaterOrEqual(calls, 2)
}

func TestSupervisor_Stop_On_Success(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker running only once
	workerMock.EXPECT().
		Run(gomock.Any()).
		Return(nil).
		Times(1)

	sup := NewSupervisor(slog.Default())

	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		// Then the supervisor detected a clean exit and stopped
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_Stop_Cancels_Workers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker blocking until its context ends
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}).
		Times(1)

	sup := NewSupervisor(slog.Default())

	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(context.Background())
		close(done)
	}()

	// When stopping the supervisor
	time.Sleep(100 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after Stop()")
	}
}
