package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("not a cron", nil, false)
	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestCronSchedulerRunsImmediately(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 1)
	s := NewCronScheduler("0 0 1 1 *", time.UTC, true)
	if err := s.Start(context.Background(), func(ts time.Time) { fired <- ts }); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not run on start")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestCronSchedulerStopWaitsForImmediateRun(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	s := NewCronScheduler("0 0 1 1 *", time.UTC, true)
	err := s.Start(context.Background(), func(time.Time) {
		close(entered)
		<-release
		finished.Store(true)
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	<-entered

	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop(context.Background()) }()

	select {
	case <-stopped:
		t.Fatalf("stop returned while the immediate run was still going")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	if err := <-stopped; err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !finished.Load() {
		t.Fatalf("stop returned before the job finished")
	}
}

func TestCronSchedulerStopHonoursDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	s := NewCronScheduler("0 0 1 1 *", time.UTC, true)
	if err := s.Start(context.Background(), func(time.Time) { <-release }); err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); err == nil {
		t.Fatalf("expected deadline error while the job is blocked")
	}
}
