package workerutil

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestGroupStopWaitsForWorkers(t *testing.T) {
	g := NewGroup(context.Background(), fastOptions())
	var stopped atomic.Int32
	started := make(chan struct{}, 2)

	for _, name := range []string{"a", "b"} {
		g.Go(name, func(ctx context.Context) {
			started <- struct{}{}
			<-ctx.Done()
			stopped.Add(1)
		})
	}
	<-started
	<-started
	g.Stop()

	if got := stopped.Load(); got != 2 {
		t.Fatalf("stopped workers = %d, want 2", got)
	}
	if g.Context().Err() == nil {
		t.Fatal("group context should be cancelled after Stop")
	}
	g.Stop()
}

func TestGroupGoAfterStopIsNoop(t *testing.T) {
	g := NewGroup(context.Background(), fastOptions())
	g.Stop()

	var ran atomic.Bool
	g.Go("late", func(context.Context) { ran.Store(true) })
	g.Stop()
	if ran.Load() {
		t.Fatal("worker started after Stop")
	}
}

func TestGroupDoesNotRestartWhileStopping(t *testing.T) {
	g := NewGroup(context.Background(), fastOptions())
	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	g.Go("panicky", func(context.Context) {
		runs.Add(1)
		started <- struct{}{}
		<-release
		panic("boom")
	})
	go func() {
		<-started
		close(release)
	}()
	g.Stop()

	if got := runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
}
