package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/smartwealth/advisor/internal/models"
)

// HeadlineClassifier labels a single headline for an asset class. A
// classification failure is a collaborator failure: implementations
// return Neutral with score 0 rather than an error the caller must
// recover from.
type HeadlineClassifier interface {
	ScoreHeadline(ctx context.Context, asset models.AssetClass, headline string) models.HeadlineScore
}

// Scorer turns a batch of headlines into an aggregated sentiment signal.
type Scorer struct {
	classifier HeadlineClassifier
	logger     *slog.Logger
}

// NewScorer creates a scorer backed by the given classifier.
func NewScorer(classifier HeadlineClassifier, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{classifier: classifier, logger: logger}
}

// Signal classifies each headline and aggregates into a SentimentSignal.
// Returns nil when there are no headlines, which the adjuster treats as
// "no signal available".
func (s *Scorer) Signal(ctx context.Context, asset models.AssetClass, headlines []string) *models.SentimentSignal {
	if len(headlines) == 0 {
		return nil
	}

	scores := make([]float64, 0, len(headlines))
	scored := make([]models.HeadlineScore, 0, len(headlines))
	lines := make([]string, 0, len(headlines))

	for _, h := range headlines {
		hs := s.classifier.ScoreHeadline(ctx, asset, h)
		hs.Headline = h
		scored = append(scored, hs)
		scores = append(scores, hs.Signed())
		lines = append(lines, fmt.Sprintf("%s → %s (%.2f)", h, hs.Label, hs.Score))
	}

	avg := stat.Mean(scores, nil)
	s.logger.Debug("aggregated sentiment", "asset", asset, "headlines", len(headlines), "avg_score", avg)

	return &models.SentimentSignal{
		Asset:        asset,
		AverageScore: avg,
		Rationale:    strings.Join(lines, "\n"),
		Headlines:    scored,
	}
}
