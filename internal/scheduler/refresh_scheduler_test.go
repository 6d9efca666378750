package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartwealth/advisor/internal/marketdata"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) RefreshAll(context.Context) (*marketdata.RefreshResult, error) {
	c.calls.Add(1)
	return &marketdata.RefreshResult{}, nil
}

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewRefreshScheduler(refresher, time.Hour, nil)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	// The startup run happens before the first tick.
	deadline := time.After(2 * time.Second)
	for refresher.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduler never ran the startup refresh")
		case <-time.After(10 * time.Millisecond):
		}
	}

	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	if got := refresher.calls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1 (startup only)", got)
	}
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewRefreshScheduler(refresher, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}
