package models

// SentimentLabel classifies a single headline.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// HeadlineScore is the classification of one headline.
type HeadlineScore struct {
	Headline string         `json:"headline"`
	Label    SentimentLabel `json:"label"`
	Score    float64        `json:"score"`
}

// Signed returns the score with its directional sign applied:
// positive stays positive, negative flips, neutral is zero.
func (h HeadlineScore) Signed() float64 {
	switch h.Label {
	case SentimentPositive:
		return h.Score
	case SentimentNegative:
		return -h.Score
	}
	return 0.0
}

// SentimentSignal aggregates headline scores for one asset class.
// AverageScore is the mean of the signed per-headline scores and lies
// in [-1, 1]; Rationale is a human-readable trace of the per-headline
// labels, kept only for display.
type SentimentSignal struct {
	Asset        AssetClass      `json:"asset"`
	AverageScore float64         `json:"average_score"`
	Rationale    string          `json:"rationale"`
	Headlines    []HeadlineScore `json:"headlines,omitempty"`
}
