package models

import "time"

// Headline is a cached news headline for an asset class.
type Headline struct {
	ID          int64      `json:"id"`
	Asset       AssetClass `json:"asset"`
	Text        string     `json:"headline"`
	PublishedAt time.Time  `json:"published_at"`
}

// ClosingPrice is one cached daily close for a ticker.
type ClosingPrice struct {
	ID     int64     `json:"id"`
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
}

// HistoricalSeries is an ordered sequence of daily closes, most recent
// last. Any return or volatility estimate requires at least two points.
type HistoricalSeries []float64

// Last returns the most recent close. Callers must check Len first.
func (s HistoricalSeries) Last() float64 {
	return s[len(s)-1]
}

// PriceProjection is the outcome of a Monte-Carlo price projection.
// It is derived per request and never persisted.
type PriceProjection struct {
	Ticker        string  `json:"ticker"`
	CurrentPrice  float64 `json:"current_price"`
	ExpectedPrice float64 `json:"expected_price"`
	LowerBound5   float64 `json:"lower_bound_5pct"`
	UpperBound95  float64 `json:"upper_bound_95pct"`
}
