package advisor

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/smartwealth/advisor/internal/llm"
	"github.com/smartwealth/advisor/internal/models"
	"github.com/smartwealth/advisor/internal/portfolio"
	"github.com/smartwealth/advisor/internal/sentiment"
	"github.com/smartwealth/advisor/internal/simulation"
)

type fakeHeadlines struct {
	byAsset map[models.AssetClass][]string
}

func (f *fakeHeadlines) RecentByAsset(_ context.Context, asset models.AssetClass, limit int, _ time.Duration) ([]models.Headline, error) {
	texts := f.byAsset[asset]
	if len(texts) > limit {
		texts = texts[:limit]
	}
	headlines := make([]models.Headline, len(texts))
	for i, text := range texts {
		headlines[i] = models.Headline{Asset: asset, Text: text, PublishedAt: time.Now()}
	}
	return headlines, nil
}

type fakePrices struct {
	series map[string]models.HistoricalSeries
}

func (f *fakePrices) Series(_ context.Context, ticker string, _ int) (models.HistoricalSeries, error) {
	return f.series[ticker], nil
}

type fakeSessions struct {
	messages []models.ChatMessage
}

func (f *fakeSessions) Append(_ context.Context, msg *models.ChatMessage) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeSessions) History(_ context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type countingMetrics struct {
	allocations int
	projections int
}

func (c *countingMetrics) AllocationComputed() { c.allocations++ }
func (c *countingMetrics) ProjectionRun()      { c.projections++ }

func newTestEngine(t *testing.T, deps Deps) *Engine {
	t.Helper()
	mock := llm.NewMockCollaborator()
	if deps.Collab == nil {
		deps.Collab = mock
	}
	deps.Table = portfolio.NewTable(nil)
	deps.Adjuster = sentiment.NewAdjuster(nil)
	deps.Scorer = sentiment.NewScorer(mock, nil)
	deps.Projector = simulation.NewProjector(simulation.NewSeededSimulator(42), nil)

	engine, err := NewEngine(deps)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestChatAllocationFlow(t *testing.T) {
	sessions := &fakeSessions{}
	metrics := &countingMetrics{}
	engine := newTestEngine(t, Deps{Sessions: sessions, Metrics: metrics})

	advice, err := engine.Chat(context.Background(),
		"11111111-1111-1111-1111-111111111111",
		"I'm 25 years old, I earn $4,000 a month, aggressive investor. How should I allocate my portfolio?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if advice.Intent.Intent != models.IntentPortfolioAllocation {
		t.Fatalf("intent = %s, want Portfolio_Allocation", advice.Intent.Intent)
	}
	if advice.Profile == nil || advice.Profile.Age == nil || *advice.Profile.Age != 25 {
		t.Errorf("profile age not extracted: %+v", advice.Profile)
	}

	for _, alloc := range []models.Allocation{advice.BaseAllocation, advice.Adjusted} {
		if sum := alloc.Sum(); math.Abs(sum-1.0) > 0.02+1e-9 {
			t.Errorf("allocation sum = %v, want 1.00 within tolerance", sum)
		}
	}

	var amountTotal float64
	for _, amount := range advice.Amounts {
		amountTotal += amount
	}
	if math.Abs(amountTotal-advice.TotalInvestment) > 0.02*advice.TotalInvestment+0.05 {
		t.Errorf("amounts sum to %v, total investment %v", amountTotal, advice.TotalInvestment)
	}

	if advice.Narrative == "" {
		t.Error("narrative is empty")
	}
	if metrics.allocations != 1 {
		t.Errorf("allocations counter = %d, want 1", metrics.allocations)
	}
	if len(sessions.messages) != 2 {
		t.Fatalf("persisted %d messages, want user + assistant", len(sessions.messages))
	}
	if sessions.messages[0].Role != models.RoleUser || sessions.messages[1].Role != models.RoleAssistant {
		t.Errorf("message roles = %s, %s", sessions.messages[0].Role, sessions.messages[1].Role)
	}

	history, err := engine.History(context.Background(), "11111111-1111-1111-1111-111111111111")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history returned %d messages, want 2", len(history))
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	engine := newTestEngine(t, Deps{})

	history, err := engine.History(context.Background(), "77777777-7777-7777-7777-777777777777")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no history without a store, got %d messages", len(history))
	}
}

func TestChatAllocationBullishSentiment(t *testing.T) {
	headlines := &fakeHeadlines{byAsset: map[models.AssetClass][]string{
		models.AssetStocks: {
			"Markets rally to record highs",
			"Earnings beat expectations across the board",
			"Strong growth lifts equities",
		},
	}}
	engine := newTestEngine(t, Deps{Headlines: headlines})

	// No profile details, so the base allocation is the conservative
	// default with Stocks at 0.30.
	advice, err := engine.Chat(context.Background(),
		"22222222-2222-2222-2222-222222222222",
		"How should I allocate my savings?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if advice.BaseAllocation[models.AssetStocks] != 0.30 {
		t.Fatalf("base Stocks = %v, want 0.30", advice.BaseAllocation[models.AssetStocks])
	}
	if advice.Adjusted[models.AssetStocks] <= advice.BaseAllocation[models.AssetStocks] {
		t.Errorf("adjusted Stocks = %v, want above base %v on bullish news",
			advice.Adjusted[models.AssetStocks], advice.BaseAllocation[models.AssetStocks])
	}
	if !strings.Contains(advice.SentimentNotes, "### Stocks") {
		t.Errorf("sentiment notes missing Stocks section:\n%s", advice.SentimentNotes)
	}
}

func TestChatPredictionFlow(t *testing.T) {
	series := make(models.HistoricalSeries, 60)
	price := 100.0
	for i := range series {
		if i%2 == 0 {
			price *= 1.01
		} else {
			price *= 0.995
		}
		series[i] = price
	}

	metrics := &countingMetrics{}
	engine := newTestEngine(t, Deps{
		Prices:  &fakePrices{series: map[string]models.HistoricalSeries{"AAPL": series}},
		Metrics: metrics,
	})

	advice, err := engine.Chat(context.Background(),
		"33333333-3333-3333-3333-333333333333",
		"Can you predict where Apple stock is heading?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if advice.Intent.Intent != models.IntentInvestmentPrediction {
		t.Fatalf("intent = %s, want Investment_Prediction", advice.Intent.Intent)
	}
	if advice.Projection == nil {
		t.Fatal("projection is nil")
	}
	if advice.Projection.Ticker != "AAPL" {
		t.Errorf("ticker = %s, want AAPL", advice.Projection.Ticker)
	}
	if advice.Projection.LowerBound5 > advice.Projection.ExpectedPrice ||
		advice.Projection.ExpectedPrice > advice.Projection.UpperBound95 {
		t.Errorf("bounds out of order: %+v", advice.Projection)
	}
	if !strings.Contains(advice.Narrative, "AAPL") {
		t.Errorf("narrative does not mention ticker:\n%s", advice.Narrative)
	}
	if metrics.projections != 1 {
		t.Errorf("projections counter = %d, want 1", metrics.projections)
	}
}

func TestChatPredictionInsufficientHistory(t *testing.T) {
	engine := newTestEngine(t, Deps{
		Prices: &fakePrices{series: map[string]models.HistoricalSeries{"AAPL": {100.0}}},
	})

	advice, err := engine.Chat(context.Background(),
		"44444444-4444-4444-4444-444444444444",
		"Predict Apple stock for me")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if advice.Projection != nil {
		t.Error("expected nil projection with one cached close")
	}
	if !strings.Contains(advice.Narrative, "unavailable") {
		t.Errorf("narrative should explain unavailability:\n%s", advice.Narrative)
	}
}

func TestChatGeneral(t *testing.T) {
	engine := newTestEngine(t, Deps{})

	advice, err := engine.Chat(context.Background(),
		"55555555-5555-5555-5555-555555555555", "Good morning!")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if advice.Intent.Intent != models.IntentGeneralChat {
		t.Errorf("intent = %s, want General_Chat", advice.Intent.Intent)
	}
	if advice.BaseAllocation != nil || advice.Projection != nil {
		t.Error("general chat should not produce allocation or projection")
	}
	if advice.Narrative == "" {
		t.Error("narrative is empty")
	}
}

func TestChatEmptyQuery(t *testing.T) {
	engine := newTestEngine(t, Deps{})
	if _, err := engine.Chat(context.Background(), "66666666-6666-6666-6666-666666666666", "   "); err == nil {
		t.Error("expected error for empty query")
	}
}
