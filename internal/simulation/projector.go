package simulation

import (
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/smartwealth/advisor/internal/models"
)

const (
	// DefaultHorizonDays is one trading year.
	DefaultHorizonDays = 252
	// DefaultPathCount balances stability of the percentile bounds
	// against runtime.
	DefaultPathCount = 1000
)

// Projector runs the full projection: estimate GBM parameters from a
// historical series, simulate, and summarize the terminal prices.
type Projector struct {
	sim         *Simulator
	horizonDays int
	pathCount   int
	logger      *slog.Logger
}

// NewProjector creates a projector with the default horizon and path count.
func NewProjector(sim *Simulator, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{
		sim:         sim,
		horizonDays: DefaultHorizonDays,
		pathCount:   DefaultPathCount,
		logger:      logger,
	}
}

// Forecast projects the price of ticker from its historical closes.
// Fails with ErrInsufficientHistory when fewer than two closes exist.
func (p *Projector) Forecast(ticker string, series models.HistoricalSeries) (*models.PriceProjection, error) {
	drift, volatility, err := EstimateParams(series)
	if err != nil {
		return nil, fmt.Errorf("estimate params for %s: %w", ticker, err)
	}

	current := series.Last()
	matrix, err := p.sim.Simulate(current, drift, volatility, p.horizonDays, p.pathCount)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", ticker, err)
	}

	projection, err := ProjectTerminal(ticker, current, matrix[len(matrix)-1])
	if err != nil {
		return nil, err
	}

	p.logger.Info("price projection computed",
		"ticker", ticker,
		"current", projection.CurrentPrice,
		"expected", projection.ExpectedPrice,
		"lower_5pct", projection.LowerBound5,
		"upper_95pct", projection.UpperBound95)

	return projection, nil
}

// ProjectTerminal summarizes a row of simulated terminal prices into a
// projection: the arithmetic mean and the 5th/95th percentile bounds,
// rounded to two decimals.
func ProjectTerminal(ticker string, currentPrice float64, terminal []float64) (*models.PriceProjection, error) {
	if len(terminal) == 0 {
		return nil, fmt.Errorf("%w: no simulated terminal prices", ErrInsufficientHistory)
	}

	sorted := make([]float64, len(terminal))
	copy(sorted, terminal)
	sort.Float64s(sorted)

	return &models.PriceProjection{
		Ticker:        ticker,
		CurrentPrice:  currentPrice,
		ExpectedPrice: models.Round2(stat.Mean(terminal, nil)),
		LowerBound5:   models.Round2(percentile(sorted, 5)),
		UpperBound95:  models.Round2(percentile(sorted, 95)),
	}, nil
}

// percentile computes the p-th percentile of sorted values with the
// linear-interpolation method: rank p/100·(n−1), interpolating between
// the two nearest order statistics. gonum's Quantile kinds implement
// different interpolation rules, so this matches the conventional
// definition directly.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(rank)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
