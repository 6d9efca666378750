// Package llm hosts the language-model collaborators the advisory
// pipeline delegates to: intent classification, profile extraction,
// headline sentiment, company resolution and narrative generation.
// Every call is best-effort: failures surface as documented fallback
// values, never as errors the pipeline must recover from.
package llm

import (
	"context"

	"github.com/smartwealth/advisor/internal/models"
)

// Collaborator is the external-model boundary of the pipeline.
type Collaborator interface {
	// ClassifyIntent categorizes a query. On failure it returns the
	// low-confidence Knowledge fallback.
	ClassifyIntent(ctx context.Context, query string) models.IntentResult

	// ExtractProfile pulls a coarse financial profile from free text.
	// On failure every field is nil.
	ExtractProfile(ctx context.Context, query string) models.UserProfile

	// ResolveCompany decides whether the query targets a specific
	// company/ticker; on failure the profile branch is assumed.
	ResolveCompany(ctx context.Context, query string) models.CompanyQuery

	// ScoreHeadline labels one headline for an asset class. On failure
	// it returns Neutral with score 0.
	ScoreHeadline(ctx context.Context, asset models.AssetClass, headline string) models.HeadlineScore

	// SuggestInvestmentAmount proposes a lump-sum amount fitting the
	// profile. On failure it returns the 1000 default.
	SuggestInvestmentAmount(ctx context.Context, query string, profile models.UserProfile) float64

	// GenerateNarrative renders the final advisory text. On failure it
	// returns a bracketed error placeholder rather than empty output.
	GenerateNarrative(ctx context.Context, profile models.UserProfile, base, adjusted models.Allocation, rationale string) string
}

const (
	// fallbackAmount is the suggested investment when no usable number
	// comes back from the model.
	fallbackAmount = 1000.0

	// fallbackConfidence is attached to the Knowledge fallback intent.
	fallbackConfidence = 0.3
)

// fallbackIntent is returned whenever classification fails.
func fallbackIntent(reason string) models.IntentResult {
	return models.IntentResult{
		Intent:     models.IntentKnowledge,
		Confidence: fallbackConfidence,
		Rationale:  reason,
	}
}

// neutralScore is the headline-classification fallback.
func neutralScore() models.HeadlineScore {
	return models.HeadlineScore{Label: models.SentimentNeutral, Score: 0.0}
}
