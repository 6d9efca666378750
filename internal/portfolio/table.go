// Package portfolio implements the deterministic rule-table asset
// allocation. The rules apply in a fixed order and are not commutative:
// age bracket first, then risk tolerance deltas, then income deltas,
// then goal-based overrides, then normalization.
package portfolio

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smartwealth/advisor/internal/models"
)

// ErrZeroTotal indicates an allocation whose weights sum to zero or less,
// which cannot be normalized.
var ErrZeroTotal = errors.New("allocation weights sum to zero")

// Table computes base allocations from user profiles.
type Table struct {
	logger *slog.Logger
}

// NewTable creates an allocation table.
func NewTable(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{logger: logger}
}

// defaultAllocation is the conservative fallback used when no profile
// information is available, and again when a pathological profile drives
// the running weights to a degenerate total.
func defaultAllocation() models.Allocation {
	return models.Allocation{
		models.AssetStocks:     0.30,
		models.AssetBonds:      0.40,
		models.AssetGold:       0.10,
		models.AssetRealEstate: 0.10,
		models.AssetCrypto:     0.05,
		models.AssetCash:       0.05,
	}
}

// BaseAllocate derives the base allocation for a profile. Missing profile
// fields skip their rule; present fields fire exactly one branch each.
// The returned weights are normalized and rounded to two decimals.
func (t *Table) BaseAllocate(profile models.UserProfile) (models.Allocation, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	alloc := defaultAllocation()

	// Step 1: age bracket. Each bracket overwrites only its listed
	// classes; unlisted classes keep their prior weight.
	if profile.Age != nil {
		switch age := *profile.Age; {
		case age < 30:
			alloc.Merge(models.Allocation{
				models.AssetStocks: 0.55,
				models.AssetBonds:  0.20,
				models.AssetGold:   0.10,
				models.AssetCrypto: 0.10,
				models.AssetCash:   0.05,
			})
		case age < 50:
			alloc.Merge(models.Allocation{
				models.AssetStocks:     0.45,
				models.AssetBonds:      0.30,
				models.AssetGold:       0.15,
				models.AssetRealEstate: 0.05,
				models.AssetCash:       0.05,
			})
		default:
			alloc.Merge(models.Allocation{
				models.AssetStocks:     0.25,
				models.AssetBonds:      0.45,
				models.AssetGold:       0.15,
				models.AssetRealEstate: 0.10,
				models.AssetCash:       0.05,
			})
		}
	}

	// Step 2: risk tolerance deltas on whatever vector exists now.
	if profile.RiskTolerance != nil {
		switch *profile.RiskTolerance {
		case models.RiskAggressive:
			alloc[models.AssetStocks] += 0.15
			alloc[models.AssetCrypto] += 0.05
			alloc[models.AssetBonds] -= 0.10
			alloc[models.AssetCash] -= 0.05
		case models.RiskConservative:
			alloc[models.AssetStocks] -= 0.15
			alloc[models.AssetBonds] += 0.10
			alloc[models.AssetCash] += 0.05
		}
	}

	// Step 3: income. Low income forces Crypto to exactly zero; this is a
	// hard override, not a delta. Bounds are strict on both sides.
	if profile.MonthlyIncome != nil {
		switch income := *profile.MonthlyIncome; {
		case income < 30000:
			alloc[models.AssetCash] += 0.10
			alloc[models.AssetStocks] -= 0.05
			alloc[models.AssetCrypto] = 0.0
		case income > 100000:
			alloc[models.AssetStocks] += 0.10
			alloc[models.AssetCrypto] += 0.05
		}
	}

	// Step 4: goal text, first match wins in declared priority order.
	if profile.InvestmentGoal != nil {
		goal := strings.ToLower(*profile.InvestmentGoal)
		switch {
		case strings.Contains(goal, "retirement"):
			alloc.Merge(models.Allocation{
				models.AssetBonds:  0.50,
				models.AssetStocks: 0.25,
				models.AssetGold:   0.15,
				models.AssetCash:   0.10,
			})
		case strings.Contains(goal, "short"):
			alloc.Merge(models.Allocation{
				models.AssetCash:   0.40,
				models.AssetBonds:  0.30,
				models.AssetStocks: 0.20,
				models.AssetGold:   0.10,
				models.AssetCrypto: 0.0,
			})
		case strings.Contains(goal, "wealth"), strings.Contains(goal, "growth"):
			alloc.Merge(models.Allocation{
				models.AssetStocks: 0.60,
				models.AssetCrypto: 0.10,
				models.AssetBonds:  0.15,
				models.AssetGold:   0.10,
				models.AssetCash:   0.05,
			})
		}
	}

	normalized, err := Normalize(alloc)
	if errors.Is(err, ErrZeroTotal) {
		t.logger.Warn("degenerate allocation total, falling back to conservative default",
			"profile_age", profile.Age,
			"profile_income", profile.MonthlyIncome)
		normalized, err = Normalize(defaultAllocation())
	}
	if err != nil {
		return nil, err
	}

	return normalized, nil
}

// Normalize floors negative weights at zero, divides every weight by the
// total and rounds each quotient to two decimals. Because rounding is
// per entry, the result sums to 1.00 only within ±0.02 for a six-entry
// vector. Returns ErrZeroTotal when the floored weights sum to zero.
func Normalize(alloc models.Allocation) (models.Allocation, error) {
	floored := make(models.Allocation, len(alloc))
	for asset, w := range alloc {
		if w < 0 {
			w = 0
		}
		floored[asset] = w
	}

	total := floored.Sum()
	if total <= 0 {
		return nil, ErrZeroTotal
	}

	out := make(models.Allocation, len(floored))
	for asset, w := range floored {
		out[asset] = models.Round2(w / total)
	}
	return out, nil
}
