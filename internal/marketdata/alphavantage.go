package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/smartwealth/advisor/internal/models"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageClient fetches daily closing prices from the Alpha Vantage
// TIME_SERIES_DAILY endpoint.
type AlphaVantageClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewAlphaVantageClient creates an Alpha Vantage client.
func NewAlphaVantageClient(apiKey string, logger *slog.Logger) *AlphaVantageClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlphaVantageClient{
		apiKey:  apiKey,
		baseURL: defaultAlphaVantageBaseURL,
		logger:  logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// dailyResponse mirrors the relevant parts of the TIME_SERIES_DAILY
// payload. The time series maps date strings to per-field quote maps
// with keys like "4. close".
type dailyResponse struct {
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
}

// FetchDailyCloses returns the available daily closes for a ticker in
// chronological order, oldest first.
func (c *AlphaVantageClient) FetchDailyCloses(ctx context.Context, ticker string) ([]models.ClosingPrice, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", ticker)
	params.Set("outputsize", "compact")
	params.Set("apikey", c.apiKey)

	endpoint := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read price response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	var parsed dailyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}
	if parsed.ErrorMessage != "" {
		return nil, fmt.Errorf("price API error for %s: %s", ticker, parsed.ErrorMessage)
	}
	// Rate-limit notices arrive as 200 responses with a Note or
	// Information field and no series.
	if len(parsed.TimeSeries) == 0 {
		note := parsed.Note
		if note == "" {
			note = parsed.Information
		}
		return nil, fmt.Errorf("no price data for %s: %s", ticker, note)
	}

	dates := make([]string, 0, len(parsed.TimeSeries))
	for date := range parsed.TimeSeries {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	closes := make([]models.ClosingPrice, 0, len(dates))
	for _, dateStr := range dates {
		quote := parsed.TimeSeries[dateStr]
		closeStr, ok := quote["4. close"]
		if !ok {
			continue
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			c.logger.Warn("skipping unparsable close", "ticker", ticker, "date", dateStr, "value", closeStr)
			continue
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.logger.Warn("skipping unparsable close date", "ticker", ticker, "date", dateStr)
			continue
		}
		closes = append(closes, models.ClosingPrice{
			Ticker: ticker,
			Date:   date,
			Close:  closePrice,
		})
	}

	c.logger.Debug("fetched daily closes", "ticker", ticker, "count", len(closes))
	return closes, nil
}
