package models

import "math"

// AssetClass identifies one of the fixed asset classes the engine allocates
// across.
type AssetClass string

const (
	AssetStocks     AssetClass = "Stocks"
	AssetBonds      AssetClass = "Bonds"
	AssetGold       AssetClass = "Gold"
	AssetRealEstate AssetClass = "RealEstate"
	AssetCrypto     AssetClass = "Crypto"
	AssetCash       AssetClass = "Cash"
)

// AllAssetClasses lists every asset class in display order.
var AllAssetClasses = []AssetClass{
	AssetStocks, AssetBonds, AssetGold, AssetRealEstate, AssetCrypto, AssetCash,
}

// SentimentAssets are the classes eligible for news-sentiment adjustment.
// Bonds and Cash are deliberately never adjusted.
var SentimentAssets = []AssetClass{
	AssetStocks, AssetGold, AssetCrypto, AssetRealEstate,
}

// Allocation maps asset classes to portfolio weights. After normalization
// the weights sum to 1.00 within a ±0.02 rounding tolerance.
type Allocation map[AssetClass]float64

// Clone returns an independent copy of the allocation.
func (a Allocation) Clone() Allocation {
	out := make(Allocation, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Sum returns the total of all weights.
func (a Allocation) Sum() float64 {
	total := 0.0
	for _, v := range a {
		total += v
	}
	return total
}

// Merge overwrites the listed weights, leaving unlisted classes untouched.
func (a Allocation) Merge(updates Allocation) {
	for k, v := range updates {
		a[k] = v
	}
}

// Round2 rounds a weight to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
