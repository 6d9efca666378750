// Package marketdata fetches external market inputs: news headlines for
// the sentiment stage and daily closing prices for the projection stage.
// Fetched data is cached through the database repositories so advisory
// requests never block on third-party APIs.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/smartwealth/advisor/internal/models"
)

const defaultNewsBaseURL = "https://newsapi.org/v2"

// assetQueries maps each sentiment-eligible asset class to its news
// search query.
var assetQueries = map[models.AssetClass]string{
	models.AssetStocks:     "stock market",
	models.AssetGold:       "gold price",
	models.AssetCrypto:     "cryptocurrency market",
	models.AssetRealEstate: "real estate market",
}

// NewsClient fetches headlines from the NewsAPI everything endpoint.
type NewsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewNewsClient creates a NewsAPI client.
func NewNewsClient(apiKey string, logger *slog.Logger) *NewsClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsClient{
		apiKey:  apiKey,
		baseURL: defaultNewsBaseURL,
		logger:  logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type newsArticle struct {
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"publishedAt"`
}

type newsResponse struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"totalResults"`
	Articles     []newsArticle `json:"articles"`
	Code         string        `json:"code"`
	Message      string        `json:"message"`
}

// FetchHeadlines returns up to limit recent headlines for an asset
// class. Asset classes without a news query (Bonds, Cash) return an
// error.
func (c *NewsClient) FetchHeadlines(ctx context.Context, asset models.AssetClass, limit int) ([]models.Headline, error) {
	query, ok := assetQueries[asset]
	if !ok {
		return nil, fmt.Errorf("no news query configured for asset %s", asset)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprintf("%d", limit))

	endpoint := fmt.Sprintf("%s/everything?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build news request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read news response: %w", err)
	}

	var parsed newsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "ok" {
		return nil, fmt.Errorf("news API error (status %d, code %s): %s",
			resp.StatusCode, parsed.Code, parsed.Message)
	}

	headlines := make([]models.Headline, 0, len(parsed.Articles))
	for _, article := range parsed.Articles {
		if article.Title == "" {
			continue
		}
		headlines = append(headlines, models.Headline{
			Asset:       asset,
			Text:        article.Title,
			PublishedAt: article.PublishedAt,
		})
	}

	c.logger.Debug("fetched headlines", "asset", asset, "count", len(headlines))
	return headlines, nil
}
