package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smartwealth/advisor/internal/models"
)

// HeadlineFetcher fetches headlines for one asset class.
type HeadlineFetcher interface {
	FetchHeadlines(ctx context.Context, asset models.AssetClass, limit int) ([]models.Headline, error)
}

// PriceFetcher fetches daily closes for one ticker.
type PriceFetcher interface {
	FetchDailyCloses(ctx context.Context, ticker string) ([]models.ClosingPrice, error)
}

// HeadlineStore is the cache the refresher writes headlines into.
type HeadlineStore interface {
	InsertBatch(ctx context.Context, headlines []models.Headline) error
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

// PriceStore is the cache the refresher writes closes into. LatestDate
// reports the most recent stored close date for a ticker, zero when
// nothing is cached.
type PriceStore interface {
	UpsertCloses(ctx context.Context, closes []models.ClosingPrice) error
	LatestDate(ctx context.Context, ticker string) (time.Time, error)
}

// Refresher pulls fresh market data into the cache. It is invoked from
// the admin refresh endpoint and the periodic scheduler.
type Refresher struct {
	news          HeadlineFetcher
	prices        PriceFetcher
	headlineStore HeadlineStore
	priceStore    PriceStore
	tickers       []string
	headlineLimit int
	headlineTTL   time.Duration
	priceFreshFor time.Duration
	logger        *slog.Logger
}

// NewRefresher wires a refresher over the given fetchers and stores.
// tickers defaults to DefaultTickers when empty.
func NewRefresher(news HeadlineFetcher, prices PriceFetcher, headlineStore HeadlineStore, priceStore PriceStore, tickers []string, logger *slog.Logger) *Refresher {
	if len(tickers) == 0 {
		tickers = DefaultTickers()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		news:          news,
		prices:        prices,
		headlineStore: headlineStore,
		priceStore:    priceStore,
		tickers:       tickers,
		headlineLimit: 10,
		headlineTTL:   7 * 24 * time.Hour,
		priceFreshFor: 24 * time.Hour,
		logger:        logger,
	}
}

// RefreshResult summarizes one refresh run.
type RefreshResult struct {
	HeadlinesFetched int      `json:"headlines_fetched"`
	TickersUpdated   int      `json:"tickers_updated"`
	TickersSkipped   int      `json:"tickers_skipped,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	Duration         string   `json:"duration"`
}

// RefreshAll fetches headlines for every sentiment-eligible asset class
// and daily closes for every configured ticker. Individual fetch
// failures are collected, not fatal; an error is returned only when
// nothing could be refreshed.
func (r *Refresher) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	start := time.Now()
	result := &RefreshResult{}

	for _, asset := range models.SentimentAssets {
		headlines, err := r.news.FetchHeadlines(ctx, asset, r.headlineLimit)
		if err != nil {
			r.logger.Warn("headline refresh failed", "asset", asset, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("headlines %s: %v", asset, err))
			continue
		}
		if err := r.headlineStore.InsertBatch(ctx, headlines); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("store headlines %s: %v", asset, err))
			continue
		}
		result.HeadlinesFetched += len(headlines)
	}

	if deleted, err := r.headlineStore.DeleteOlderThan(ctx, r.headlineTTL); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("prune headlines: %v", err))
	} else if deleted > 0 {
		r.logger.Info("pruned stale headlines", "count", deleted)
	}

	for _, ticker := range r.tickers {
		// Skip tickers whose cached closes are still fresh; the daily
		// provider quota is the scarce resource here.
		if latest, err := r.priceStore.LatestDate(ctx, ticker); err != nil {
			r.logger.Warn("staleness check failed, refreshing anyway", "ticker", ticker, "error", err)
		} else if !latest.IsZero() && time.Since(latest) < r.priceFreshFor {
			result.TickersSkipped++
			continue
		}

		closes, err := r.prices.FetchDailyCloses(ctx, ticker)
		if err != nil {
			r.logger.Warn("price refresh failed", "ticker", ticker, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("prices %s: %v", ticker, err))
			continue
		}
		if err := r.priceStore.UpsertCloses(ctx, closes); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("store prices %s: %v", ticker, err))
			continue
		}
		result.TickersUpdated++
	}

	result.Duration = time.Since(start).Round(time.Millisecond).String()

	if result.HeadlinesFetched == 0 && result.TickersUpdated == 0 && result.TickersSkipped == 0 && len(result.Errors) > 0 {
		return result, fmt.Errorf("refresh failed entirely: %d errors", len(result.Errors))
	}

	r.logger.Info("market data refreshed",
		"headlines", result.HeadlinesFetched,
		"tickers", result.TickersUpdated,
		"skipped", result.TickersSkipped,
		"errors", len(result.Errors),
		"duration", result.Duration)
	return result, nil
}

// RefreshTicker fetches and caches closes for a single ticker, used on
// cache misses during prediction requests. No staleness check applies
// here: a miss means the cache is unusable regardless of how recent its
// newest row is.
func (r *Refresher) RefreshTicker(ctx context.Context, ticker string) error {
	closes, err := r.prices.FetchDailyCloses(ctx, ticker)
	if err != nil {
		return fmt.Errorf("fetch closes for %s: %w", ticker, err)
	}
	if err := r.priceStore.UpsertCloses(ctx, closes); err != nil {
		return fmt.Errorf("store closes for %s: %w", ticker, err)
	}
	return nil
}
