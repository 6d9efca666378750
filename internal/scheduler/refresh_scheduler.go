// Package scheduler runs the periodic market-data refresh.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/smartwealth/advisor/internal/marketdata"
)

// Refresher is the market-data refresh operation the scheduler drives.
type Refresher interface {
	RefreshAll(ctx context.Context) (*marketdata.RefreshResult, error)
}

// RefreshScheduler refreshes the headline and price caches on a fixed
// interval so chat requests always work from warm data.
type RefreshScheduler struct {
	refresher Refresher
	logger    *slog.Logger
	stopChan  chan struct{}
	interval  time.Duration
}

// NewRefreshScheduler creates a scheduler. interval <= 0 defaults to
// six hours.
func NewRefreshScheduler(refresher Refresher, interval time.Duration, logger *slog.Logger) *RefreshScheduler {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshScheduler{
		refresher: refresher,
		logger:    logger,
		stopChan:  make(chan struct{}),
		interval:  interval,
	}
}

// Start begins the scheduler loop. It blocks until Stop is called or
// the context is cancelled; run it in its own goroutine.
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.logger.Info("starting market data refresh scheduler", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Warm the caches once on startup.
	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stopChan:
			s.logger.Info("refresh scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("refresh scheduler stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler.
func (s *RefreshScheduler) Stop() {
	close(s.stopChan)
}

func (s *RefreshScheduler) runOnce(ctx context.Context) {
	result, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("scheduled market data refresh failed", "error", err)
		return
	}
	s.logger.Info("scheduled market data refresh complete",
		"headlines", result.HeadlinesFetched,
		"tickers", result.TickersUpdated,
		"errors", len(result.Errors))
}
