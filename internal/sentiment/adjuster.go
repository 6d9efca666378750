// Package sentiment perturbs a base allocation using news-sentiment
// signals and rebuilds a normalized vector.
package sentiment

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/smartwealth/advisor/internal/models"
	"github.com/smartwealth/advisor/internal/portfolio"
)

// adjustmentStep is the bounded weight perturbation applied per signal.
const adjustmentStep = 0.05

// deadZone is the half-width of the score band in which no adjustment is
// applied. The comparison is strict: a score of exactly ±0.2 changes
// nothing.
const deadZone = 0.2

// Lookup resolves the sentiment signal for an asset class; nil means no
// signal is available and the class is left untouched.
type Lookup func(asset models.AssetClass) *models.SentimentSignal

// Adjuster applies sentiment signals to allocations.
type Adjuster struct {
	logger *slog.Logger
}

// NewAdjuster creates an adjuster.
func NewAdjuster(logger *slog.Logger) *Adjuster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adjuster{logger: logger}
}

// Adjust perturbs the base allocation for the tracked asset classes
// (Stocks, Gold, Crypto, RealEstate; Bonds and Cash are never adjusted)
// and renormalizes. The returned rationale is an ordered, display-only
// trace of the per-headline sentiment; it carries no numeric meaning.
func (a *Adjuster) Adjust(base models.Allocation, lookup Lookup) (models.Allocation, string, error) {
	adjusted := base.Clone()
	var sections []string

	for _, asset := range models.SentimentAssets {
		signal := lookup(asset)
		if signal == nil {
			continue
		}

		sections = append(sections, fmt.Sprintf("### %s\n%s", asset, signal.Rationale))

		switch {
		case signal.AverageScore > deadZone:
			adjusted[asset] = models.Round2(adjusted[asset] + adjustmentStep)
		case signal.AverageScore < -deadZone:
			cut := adjusted[asset] - adjustmentStep
			if cut < 0 {
				cut = 0
			}
			adjusted[asset] = models.Round2(cut)
		}

		a.logger.Debug("sentiment signal applied",
			"asset", asset,
			"avg_score", signal.AverageScore,
			"weight", adjusted[asset])
	}

	normalized, err := portfolio.Normalize(adjusted)
	if err != nil {
		return nil, "", fmt.Errorf("renormalize adjusted allocation: %w", err)
	}

	return normalized, strings.Join(sections, "\n\n"), nil
}
