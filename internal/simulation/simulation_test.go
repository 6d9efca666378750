package simulation

import (
	"errors"
	"math"
	"testing"

	"github.com/smartwealth/advisor/internal/models"
)

func TestSimulateZeroVolatilityIsDeterministic(t *testing.T) {
	sim := NewSimulator()

	const (
		initial = 100.0
		drift   = 0.001
		days    = 10
		paths   = 5
	)

	matrix, err := sim.Simulate(initial, drift, 0, days, paths)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}

	if len(matrix) != days {
		t.Fatalf("expected %d rows, got %d", days, len(matrix))
	}

	for tDay := 0; tDay < days; tDay++ {
		want := initial * math.Exp(drift*float64(tDay))
		for p := 0; p < paths; p++ {
			if math.Abs(matrix[tDay][p]-want) > 1e-9 {
				t.Fatalf("day %d path %d: got %v, want %v", tDay, p, matrix[tDay][p], want)
			}
		}
	}
}

func TestSimulateFirstRowEqualsInitialPrice(t *testing.T) {
	sim := NewSeededSimulator(42)

	matrix, err := sim.Simulate(250.0, 0.0005, 0.02, 30, 50)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}

	for p, price := range matrix[0] {
		if price != 250.0 {
			t.Errorf("path %d starts at %v, want 250.0", p, price)
		}
	}
}

func TestSimulateSeededRunsAreReproducible(t *testing.T) {
	first, err := NewSeededSimulator(7).Simulate(100, 0.001, 0.02, 20, 40)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}
	second, err := NewSeededSimulator(7).Simulate(100, 0.001, 0.02, 20, 40)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}

	for tDay := range first {
		for p := range first[tDay] {
			if first[tDay][p] != second[tDay][p] {
				t.Fatalf("seeded runs diverge at day %d path %d", tDay, p)
			}
		}
	}
}

func TestSimulateRejectsInvalidArguments(t *testing.T) {
	sim := NewSimulator()

	tests := []struct {
		name    string
		initial float64
		days    int
		paths   int
	}{
		{"non-positive price", 0, 10, 10},
		{"zero horizon", 100, 0, 10},
		{"zero paths", 100, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Simulate(tt.initial, 0.001, 0.02, tt.days, tt.paths); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestEstimateParams(t *testing.T) {
	series := models.HistoricalSeries{100, 110, 99}

	drift, vol, err := EstimateParams(series)
	if err != nil {
		t.Fatalf("EstimateParams returned error: %v", err)
	}

	// Returns are +10% and -10%: mean 0, sample stddev 0.1·sqrt(2).
	if math.Abs(drift) > 1e-12 {
		t.Errorf("expected drift 0, got %v", drift)
	}
	wantVol := 0.1 * math.Sqrt2
	if math.Abs(vol-wantVol) > 1e-9 {
		t.Errorf("expected volatility %v, got %v", wantVol, vol)
	}
}

func TestEstimateParamsInsufficientHistory(t *testing.T) {
	for _, series := range []models.HistoricalSeries{nil, {100}} {
		_, _, err := EstimateParams(series)
		if !errors.Is(err, ErrInsufficientHistory) {
			t.Errorf("series %v: expected ErrInsufficientHistory, got %v", series, err)
		}
	}
}

func TestEstimateParamsSingleReturnHasZeroVolatility(t *testing.T) {
	_, vol, err := EstimateParams(models.HistoricalSeries{100, 105})
	if err != nil {
		t.Fatalf("EstimateParams returned error: %v", err)
	}
	if vol != 0 {
		t.Errorf("expected zero volatility for a single return, got %v", vol)
	}
}

func TestProjectTerminalPercentiles(t *testing.T) {
	terminal := []float64{90, 95, 100, 105, 110}

	proj, err := ProjectTerminal("AAPL", 100, terminal)
	if err != nil {
		t.Fatalf("ProjectTerminal returned error: %v", err)
	}

	if proj.ExpectedPrice != 100.0 {
		t.Errorf("expected price 100.0, got %v", proj.ExpectedPrice)
	}
	// Linear interpolation: rank 0.05·4 = 0.2 → 91.0; rank 0.95·4 = 3.8 → 109.0.
	if proj.LowerBound5 != 91.0 {
		t.Errorf("expected 5th percentile 91.0, got %v", proj.LowerBound5)
	}
	if proj.UpperBound95 != 109.0 {
		t.Errorf("expected 95th percentile 109.0, got %v", proj.UpperBound95)
	}
	if proj.Ticker != "AAPL" || proj.CurrentPrice != 100 {
		t.Errorf("unexpected projection identity: %+v", proj)
	}
}

func TestProjectTerminalEmptyRow(t *testing.T) {
	if _, err := ProjectTerminal("AAPL", 100, nil); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestForecastShortHistoryFails(t *testing.T) {
	projector := NewProjector(NewSeededSimulator(1), nil)

	for _, series := range []models.HistoricalSeries{nil, {42.0}} {
		if _, err := projector.Forecast("TSLA", series); !errors.Is(err, ErrInsufficientHistory) {
			t.Errorf("series %v: expected ErrInsufficientHistory, got %v", series, err)
		}
	}
}

func TestForecastProducesOrderedBounds(t *testing.T) {
	projector := NewProjector(NewSeededSimulator(99), nil)

	series := make(models.HistoricalSeries, 0, 60)
	price := 100.0
	for i := 0; i < 60; i++ {
		// Gentle oscillation around a mild uptrend.
		price *= 1.0 + 0.002*math.Sin(float64(i)) + 0.0004
		series = append(series, price)
	}

	proj, err := projector.Forecast("MSFT", series)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}

	if proj.LowerBound5 > proj.ExpectedPrice || proj.ExpectedPrice > proj.UpperBound95 {
		t.Errorf("bounds not ordered: %+v", proj)
	}
	if proj.CurrentPrice != series.Last() {
		t.Errorf("current price %v, want %v", proj.CurrentPrice, series.Last())
	}
}
