package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// flakyWorker panics a fixed number of times, then finishes cleanly.
type flakyWorker struct {
	panicsLeft atomic.Int32
	runs       atomic.Int32
	done       chan struct{}
}

func (w *flakyWorker) Run(_ context.Context) error {
	w.runs.Add(1)
	if w.panicsLeft.Add(-1) >= 0 {
		panic("boom")
	}
	close(w.done)
	return nil
}

// blockingWorker runs until its context is canceled.
type blockingWorker struct {
	started chan struct{}
}

func (w *blockingWorker) Run(ctx context.Context) error {
	close(w.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestSupervisor_Restarts_Panicking_Worker(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := NewSupervisor(log, time.Millisecond)

	worker := &flakyWorker{done: make(chan struct{})}
	worker.panicsLeft.Store(2)
	sup.Add(worker)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	finished := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(finished)
	}()

	select {
	case <-worker.done:
	case <-ctx.Done():
		t.Fatal("worker never recovered from its panics")
	}

	select {
	case <-finished:
	case <-ctx.Done():
		t.Fatal("supervisor did not return after the worker finished")
	}

	// Two crashes plus the clean run
	req.Equal(int32(3), worker.runs.Load())
}

func TestSupervisor_Stop_Cancels_Workers(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := NewSupervisor(log, time.Millisecond)

	worker := &blockingWorker{started: make(chan struct{})}
	sup.Add(worker)

	finished := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(finished)
	}()

	select {
	case <-worker.started:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never started")
	}

	sup.Stop()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not drain after Stop")
	}
	req.NotNil(sup.Cancel)
}
