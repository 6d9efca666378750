// Package advisor orchestrates one conversational turn: intent
// classification, profile extraction, rule-table allocation, sentiment
// adjustment, price projection and narrative generation.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smartwealth/advisor/internal/llm"
	"github.com/smartwealth/advisor/internal/marketdata"
	"github.com/smartwealth/advisor/internal/models"
	"github.com/smartwealth/advisor/internal/portfolio"
	"github.com/smartwealth/advisor/internal/sentiment"
	"github.com/smartwealth/advisor/internal/simulation"
)

const (
	headlinesPerAsset = 3
	headlineMaxAge    = 7 * 24 * time.Hour
	historyWindow     = 90
	historyLimit      = 50
)

// HeadlineSource reads cached headlines for an asset class.
type HeadlineSource interface {
	RecentByAsset(ctx context.Context, asset models.AssetClass, limit int, maxAge time.Duration) ([]models.Headline, error)
}

// PriceSource reads cached daily closes for a ticker, oldest first.
type PriceSource interface {
	Series(ctx context.Context, ticker string, limit int) (models.HistoricalSeries, error)
}

// MessageStore persists conversation turns and serves them back in
// chronological order.
type MessageStore interface {
	Append(ctx context.Context, msg *models.ChatMessage) error
	History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
}

// TickerRefresher fills the price cache on a miss.
type TickerRefresher interface {
	RefreshTicker(ctx context.Context, ticker string) error
}

// PipelineMetrics counts completed pipeline stages. The Prometheus
// collector satisfies it; nil disables counting.
type PipelineMetrics interface {
	AllocationComputed()
	ProjectionRun()
}

// Engine runs the advisory pipeline.
type Engine struct {
	collab    llm.Collaborator
	table     *portfolio.Table
	adjuster  *sentiment.Adjuster
	scorer    *sentiment.Scorer
	projector *simulation.Projector
	headlines HeadlineSource
	prices    PriceSource
	sessions  MessageStore
	refresher TickerRefresher
	metrics   PipelineMetrics
	logger    *slog.Logger
}

// Deps carries the engine's collaborators and stores. Collab, Table,
// Adjuster, Scorer and Projector are required; the rest may be nil and
// degrade the matching stage.
type Deps struct {
	Collab    llm.Collaborator
	Table     *portfolio.Table
	Adjuster  *sentiment.Adjuster
	Scorer    *sentiment.Scorer
	Projector *simulation.Projector
	Headlines HeadlineSource
	Prices    PriceSource
	Sessions  MessageStore
	Refresher TickerRefresher
	Metrics   PipelineMetrics
	Logger    *slog.Logger
}

// NewEngine wires an engine from its dependencies.
func NewEngine(deps Deps) (*Engine, error) {
	if deps.Collab == nil {
		return nil, fmt.Errorf("collaborator is required")
	}
	if deps.Table == nil || deps.Adjuster == nil || deps.Scorer == nil || deps.Projector == nil {
		return nil, fmt.Errorf("allocation table, adjuster, scorer and projector are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		collab:    deps.Collab,
		table:     deps.Table,
		adjuster:  deps.Adjuster,
		scorer:    deps.Scorer,
		projector: deps.Projector,
		headlines: deps.Headlines,
		prices:    deps.Prices,
		sessions:  deps.Sessions,
		refresher: deps.Refresher,
		metrics:   deps.Metrics,
		logger:    logger,
	}, nil
}

// Chat runs one conversational turn for a session. sessionID must be a
// minted UUID; the caller owns minting so the ID can be echoed back.
func (e *Engine) Chat(ctx context.Context, sessionID, query string) (*models.Advice, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	e.recordMessage(ctx, sessionID, models.RoleUser, query)

	intent := e.collab.ClassifyIntent(ctx, query)
	e.logger.Info("intent classified",
		"session_id", sessionID,
		"intent", intent.Intent,
		"confidence", intent.Confidence)

	advice := &models.Advice{SessionID: sessionID, Intent: intent}

	var err error
	switch intent.Intent {
	case models.IntentPortfolioAllocation:
		err = e.handleAllocation(ctx, query, advice)
	case models.IntentInvestmentPrediction:
		err = e.handlePrediction(ctx, query, advice)
	default:
		e.handleGeneral(advice)
	}
	if err != nil {
		return nil, err
	}

	e.recordMessage(ctx, sessionID, models.RoleAssistant, advice.Narrative)
	return advice, nil
}

// History returns the recent recorded turns for a session. Without a
// session store there is nothing to return.
func (e *Engine) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	if e.sessions == nil {
		return nil, nil
	}
	return e.sessions.History(ctx, sessionID, historyLimit)
}

// handleAllocation runs the portfolio branch: profile → base table →
// sentiment adjustment → amounts → narrative.
func (e *Engine) handleAllocation(ctx context.Context, query string, advice *models.Advice) error {
	profile := e.collab.ExtractProfile(ctx, query)
	advice.Profile = &profile

	base, err := e.table.BaseAllocate(profile)
	if err != nil {
		return fmt.Errorf("base allocation: %w", err)
	}
	advice.BaseAllocation = base

	signals := e.collectSignals(ctx)
	lookup := func(asset models.AssetClass) *models.SentimentSignal {
		return signals[asset]
	}

	adjusted, rationale, err := e.adjuster.Adjust(base, lookup)
	if err != nil {
		return fmt.Errorf("sentiment adjustment: %w", err)
	}
	advice.Adjusted = adjusted
	advice.SentimentNotes = rationale

	total := e.collab.SuggestInvestmentAmount(ctx, query, profile)
	advice.TotalInvestment = total
	advice.Amounts = make(map[models.AssetClass]float64, len(adjusted))
	for asset, weight := range adjusted {
		advice.Amounts[asset] = models.Round2(weight * total)
	}

	advice.Narrative = e.collab.GenerateNarrative(ctx, profile, base, adjusted, rationale)

	if e.metrics != nil {
		e.metrics.AllocationComputed()
	}
	return nil
}

// collectSignals gathers a sentiment signal per eligible asset from
// cached headlines. A missing cache or empty asset yields no signal,
// which the adjuster treats as neutral.
func (e *Engine) collectSignals(ctx context.Context) map[models.AssetClass]*models.SentimentSignal {
	signals := make(map[models.AssetClass]*models.SentimentSignal)
	if e.headlines == nil {
		return signals
	}

	for _, asset := range models.SentimentAssets {
		cached, err := e.headlines.RecentByAsset(ctx, asset, headlinesPerAsset, headlineMaxAge)
		if err != nil {
			e.logger.Warn("headline lookup failed, skipping asset", "asset", asset, "error", err)
			continue
		}
		if len(cached) == 0 {
			continue
		}
		texts := make([]string, len(cached))
		for i, h := range cached {
			texts[i] = h.Text
		}
		if signal := e.scorer.Signal(ctx, asset, texts); signal != nil {
			signals[asset] = signal
		}
	}
	return signals
}

// handlePrediction runs the prediction branch: resolve the company,
// load its cached series and project. Queries about the user's own
// outlook rather than a company fall back to the allocation branch.
func (e *Engine) handlePrediction(ctx context.Context, query string, advice *models.Advice) error {
	company := e.collab.ResolveCompany(ctx, query)
	if company.Intent != "company" || company.CompanyName == nil {
		return e.handleAllocation(ctx, query, advice)
	}

	ticker, ok := marketdata.TickerForCompany(*company.CompanyName)
	if !ok {
		advice.Narrative = fmt.Sprintf(
			"I couldn't map %q to a ticker symbol I track, so a price projection isn't available. "+
				"I can still help with portfolio allocation if you tell me about your situation.",
			*company.CompanyName)
		return nil
	}

	series, err := e.loadSeries(ctx, ticker)
	if err != nil {
		e.logger.Warn("no usable price history", "ticker", ticker, "error", err)
		advice.Narrative = fmt.Sprintf(
			"A projection for %s is unavailable right now: I don't have enough price history cached. "+
				"Please try again after the next market data refresh.", ticker)
		return nil
	}

	projection, err := e.projector.Forecast(ticker, series)
	if err != nil {
		return fmt.Errorf("projection for %s: %w", ticker, err)
	}
	advice.Projection = projection
	advice.Narrative = formatProjection(*company.CompanyName, projection)

	if e.metrics != nil {
		e.metrics.ProjectionRun()
	}
	return nil
}

// loadSeries reads the cached series for a ticker, refreshing the cache
// once on a miss when a refresher is wired.
func (e *Engine) loadSeries(ctx context.Context, ticker string) (models.HistoricalSeries, error) {
	if e.prices == nil {
		return nil, fmt.Errorf("no price source configured")
	}

	series, err := e.prices.Series(ctx, ticker, historyWindow)
	if err != nil {
		return nil, err
	}
	if len(series) >= 2 {
		return series, nil
	}

	if e.refresher == nil {
		return nil, fmt.Errorf("insufficient cached history for %s", ticker)
	}
	if err := e.refresher.RefreshTicker(ctx, ticker); err != nil {
		return nil, err
	}
	series, err = e.prices.Series(ctx, ticker, historyWindow)
	if err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return nil, fmt.Errorf("insufficient history for %s after refresh", ticker)
	}
	return series, nil
}

// handleGeneral answers Knowledge and GeneralChat turns. These stay
// deterministic so the engine remains useful without a model.
func (e *Engine) handleGeneral(advice *models.Advice) {
	advice.Narrative = "I'm a financial advisory assistant. I can suggest a portfolio allocation " +
		"across stocks, bonds, gold, real estate, crypto and cash based on your age, income, " +
		"risk tolerance and goals, or project a stock's price range over the next year. " +
		"Tell me about your situation, or ask about a specific company."
}

// formatProjection renders a prediction narrative from the projection
// numbers.
func formatProjection(company string, p *models.PriceProjection) string {
	return fmt.Sprintf(
		"Based on a Monte-Carlo simulation over the past trading history of %s (%s):\n\n"+
			"- Current price: %.2f\n"+
			"- Expected price in one year: %.2f\n"+
			"- Likely range (90%% of simulated outcomes): %.2f to %.2f\n\n"+
			"This is a statistical projection from historical volatility, not a guarantee.",
		company, p.Ticker, p.CurrentPrice, p.ExpectedPrice, p.LowerBound5, p.UpperBound95)
}

// recordMessage appends a turn to the session store when one is wired.
// Persistence failures are logged, never fatal to the request.
func (e *Engine) recordMessage(ctx context.Context, sessionID string, role models.MessageRole, content string) {
	if e.sessions == nil || content == "" {
		return
	}
	msg := &models.ChatMessage{SessionID: sessionID, Role: role, Content: content}
	if err := e.sessions.Append(ctx, msg); err != nil {
		e.logger.Warn("failed to persist chat message", "session_id", sessionID, "role", role, "error", err)
	}
}
