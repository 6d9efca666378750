package portfolio

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/smartwealth/advisor/internal/models"
)

func profileWithAge(age int) models.UserProfile {
	return models.UserProfile{Age: models.IntPtr(age)}
}

func assertSumNearOne(t *testing.T, alloc models.Allocation) {
	t.Helper()
	// The bound itself must stay inside the tolerance: a float sum of
	// 1.02 carries rounding noise (1.0200000000000002).
	if sum := alloc.Sum(); math.Abs(sum-1.0) > 0.02+1e-9 {
		t.Errorf("allocation sum %v outside 1.00 ± 0.02: %v", sum, alloc)
	}
}

func TestBaseAllocateAgeBrackets(t *testing.T) {
	table := NewTable(nil)

	tests := []struct {
		name string
		age  int
		want models.Allocation
	}{
		{
			// Growth-heavy set over a 1.10 raw total.
			name: "age 29 growth bracket",
			age:  29,
			want: models.Allocation{
				models.AssetStocks:     0.50,
				models.AssetBonds:      0.18,
				models.AssetGold:       0.09,
				models.AssetRealEstate: 0.09,
				models.AssetCrypto:     0.09,
				models.AssetCash:       0.05,
			},
		},
		{
			name: "age 30 balanced bracket",
			age:  30,
			want: models.Allocation{
				models.AssetStocks:     0.43,
				models.AssetBonds:      0.29,
				models.AssetGold:       0.14,
				models.AssetRealEstate: 0.05,
				models.AssetCrypto:     0.05,
				models.AssetCash:       0.05,
			},
		},
		{
			name: "age 49 balanced bracket",
			age:  49,
			want: models.Allocation{
				models.AssetStocks:     0.43,
				models.AssetBonds:      0.29,
				models.AssetGold:       0.14,
				models.AssetRealEstate: 0.05,
				models.AssetCrypto:     0.05,
				models.AssetCash:       0.05,
			},
		},
		{
			name: "age 50 preservation bracket",
			age:  50,
			want: models.Allocation{
				models.AssetStocks:     0.24,
				models.AssetBonds:      0.43,
				models.AssetGold:       0.14,
				models.AssetRealEstate: 0.10,
				models.AssetCrypto:     0.05,
				models.AssetCash:       0.05,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.BaseAllocate(profileWithAge(tt.age))
			if err != nil {
				t.Fatalf("BaseAllocate returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			assertSumNearOne(t, got)
		})
	}
}

func TestBaseAllocateIsDeterministic(t *testing.T) {
	table := NewTable(nil)
	profile := models.UserProfile{
		Age:            models.IntPtr(35),
		MonthlyIncome:  models.FloatPtr(120000),
		RiskTolerance:  models.RiskPtr(models.RiskAggressive),
		InvestmentGoal: models.StringPtr("long-term wealth"),
	}

	first, err := table.BaseAllocate(profile)
	if err != nil {
		t.Fatalf("BaseAllocate returned error: %v", err)
	}
	second, err := table.BaseAllocate(profile)
	if err != nil {
		t.Fatalf("BaseAllocate returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same profile gave different allocations: %v vs %v", first, second)
	}
}

func TestBaseAllocateGoalPriority(t *testing.T) {
	table := NewTable(nil)

	// All three goal phrases appear; only the retirement branch may fire.
	profile := models.UserProfile{
		InvestmentGoal: models.StringPtr("retirement growth wealth"),
	}

	got, err := table.BaseAllocate(profile)
	if err != nil {
		t.Fatalf("BaseAllocate returned error: %v", err)
	}

	// Retirement set over a 1.15 raw total: bonds dominate. Had the
	// wealth/growth branch fired instead, stocks would be near 0.55.
	if got[models.AssetBonds] != 0.43 {
		t.Errorf("expected retirement-weighted Bonds 0.43, got %v", got[models.AssetBonds])
	}
	if got[models.AssetStocks] != 0.22 {
		t.Errorf("expected retirement-weighted Stocks 0.22, got %v", got[models.AssetStocks])
	}
	assertSumNearOne(t, got)
}

func TestBaseAllocateCryptoHardOverride(t *testing.T) {
	table := NewTable(nil)

	// Aggressive risk bumps Crypto before the income rule zeroes it.
	profile := models.UserProfile{
		Age:           models.IntPtr(25),
		MonthlyIncome: models.FloatPtr(20000),
		RiskTolerance: models.RiskPtr(models.RiskAggressive),
	}

	got, err := table.BaseAllocate(profile)
	if err != nil {
		t.Fatalf("BaseAllocate returned error: %v", err)
	}

	if got[models.AssetCrypto] != 0.0 {
		t.Errorf("expected Crypto forced to exactly 0.0, got %v", got[models.AssetCrypto])
	}
	assertSumNearOne(t, got)
}

func TestBaseAllocateIncomeBoundsAreStrict(t *testing.T) {
	table := NewTable(nil)

	// Exactly 30000 and exactly 100000 both fall in the no-change band.
	for _, income := range []float64{30000, 100000} {
		profile := models.UserProfile{MonthlyIncome: models.FloatPtr(income)}
		got, err := table.BaseAllocate(profile)
		if err != nil {
			t.Fatalf("BaseAllocate returned error: %v", err)
		}

		want, err := Normalize(defaultAllocation())
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("income %v: expected untouched default %v, got %v", income, want, got)
		}
	}
}

func TestBaseAllocateHouseGoalMatchesAgeBracketOnly(t *testing.T) {
	table := NewTable(nil)

	// Moderate risk, mid-band income and an unmatched goal phrase: the
	// age bracket is the only rule that fires.
	profile := models.UserProfile{
		Age:            models.IntPtr(25),
		MonthlyIncome:  models.FloatPtr(50000),
		RiskTolerance:  models.RiskPtr(models.RiskModerate),
		InvestmentGoal: models.StringPtr("buy a house in 10 years"),
	}

	got, err := table.BaseAllocate(profile)
	if err != nil {
		t.Fatalf("BaseAllocate returned error: %v", err)
	}

	ageOnly, err := table.BaseAllocate(profileWithAge(25))
	if err != nil {
		t.Fatalf("BaseAllocate returned error: %v", err)
	}

	if !reflect.DeepEqual(got, ageOnly) {
		t.Errorf("expected age bracket only, got %v want %v", got, ageOnly)
	}
	assertSumNearOne(t, got)
}

func TestBaseAllocateRejectsInvalidProfile(t *testing.T) {
	table := NewTable(nil)

	tests := []struct {
		name    string
		profile models.UserProfile
	}{
		{"negative age", models.UserProfile{Age: models.IntPtr(-10)}},
		{"negative income", models.UserProfile{MonthlyIncome: models.FloatPtr(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := table.BaseAllocate(tt.profile); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestNormalizeZeroTotal(t *testing.T) {
	_, err := Normalize(models.Allocation{
		models.AssetStocks: 0,
		models.AssetBonds:  0,
	})
	if !errors.Is(err, ErrZeroTotal) {
		t.Errorf("expected ErrZeroTotal, got %v", err)
	}
}

func TestNormalizeFloorsNegativeWeights(t *testing.T) {
	got, err := Normalize(models.Allocation{
		models.AssetStocks: -0.5,
		models.AssetBonds:  0.5,
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if got[models.AssetStocks] != 0.0 {
		t.Errorf("expected negative weight floored to 0, got %v", got[models.AssetStocks])
	}
	if got[models.AssetBonds] != 1.0 {
		t.Errorf("expected Bonds normalized to 1.0, got %v", got[models.AssetBonds])
	}
}

func TestBaseAllocateEmptyProfileUsesConservativeDefault(t *testing.T) {
	table := NewTable(nil)

	got, err := table.BaseAllocate(models.UserProfile{})
	if err != nil {
		t.Fatalf("BaseAllocate returned error: %v", err)
	}

	// Default already sums to 1.0, so normalization is a no-op.
	want := models.Allocation{
		models.AssetStocks:     0.30,
		models.AssetBonds:      0.40,
		models.AssetGold:       0.10,
		models.AssetRealEstate: 0.10,
		models.AssetCrypto:     0.05,
		models.AssetCash:       0.05,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
