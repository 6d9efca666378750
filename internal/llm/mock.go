package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/smartwealth/advisor/internal/models"
)

// MockCollaborator is a deterministic rule-based Collaborator used when no
// API key is configured and in tests. Its heuristics are simple keyword
// and pattern matches, good enough to drive the full advisory pipeline
// offline.
type MockCollaborator struct{}

// NewMockCollaborator creates a mock collaborator.
func NewMockCollaborator() *MockCollaborator {
	return &MockCollaborator{}
}

var (
	agePattern     = regexp.MustCompile(`(?i)\b(\d{1,2})[\s-]*(?:years?[\s-]*old|y/?o)\b|(?i)\bi(?:'?m| am)\s+(\d{1,2})\b`)
	incomePattern  = regexp.MustCompile(`(?i)(?:earn|income|salary|make)\D{0,25}?\$?\s*([\d,]+(?:\.\d+)?)(k?)`)
	amountPattern  = regexp.MustCompile(`(?i)invest\D{0,20}?\$?\s*([\d,]+(?:\.\d+)?)(k?)`)
	horizonPattern = regexp.MustCompile(`(?i)\b(?:over|in|for|next)\s+(\d{1,2})\s+years?\b`)
)

var intentKeywords = []struct {
	intent models.Intent
	words  []string
}{
	{models.IntentInvestmentPrediction, []string{"predict", "forecast", "price target", "stock price", "be worth", "go up", "go down", "projection"}},
	{models.IntentPortfolioAllocation, []string{"allocat", "portfolio", "diversif", "invest my", "where should i invest", "split my", "asset mix"}},
	{models.IntentKnowledge, []string{"what is", "what are", "explain", "how does", "how do", "difference between", "meaning of"}},
}

// ClassifyIntent implements Collaborator using keyword matching.
func (m *MockCollaborator) ClassifyIntent(_ context.Context, query string) models.IntentResult {
	lower := strings.ToLower(query)
	for _, candidate := range intentKeywords {
		for _, word := range candidate.words {
			if strings.Contains(lower, word) {
				return models.IntentResult{
					Intent:     candidate.intent,
					Confidence: 0.9,
					Rationale:  fmt.Sprintf("matched keyword %q", word),
				}
			}
		}
	}
	return models.IntentResult{
		Intent:     models.IntentGeneralChat,
		Confidence: 0.5,
		Rationale:  "no domain keywords matched",
	}
}

// ExtractProfile implements Collaborator using regex extraction.
func (m *MockCollaborator) ExtractProfile(_ context.Context, query string) models.UserProfile {
	var profile models.UserProfile
	lower := strings.ToLower(query)

	if match := agePattern.FindStringSubmatch(query); match != nil {
		raw := match[1]
		if raw == "" {
			raw = match[2]
		}
		if age, err := strconv.Atoi(raw); err == nil && age > 0 && age < 120 {
			profile.Age = models.IntPtr(age)
		}
	}
	if match := incomePattern.FindStringSubmatch(query); match != nil {
		if income, ok := parseMoney(match[1], match[2]); ok {
			profile.MonthlyIncome = models.FloatPtr(income)
		}
	}
	if match := amountPattern.FindStringSubmatch(query); match != nil {
		if amount, ok := parseMoney(match[1], match[2]); ok {
			profile.InvestmentAmount = models.FloatPtr(amount)
		}
	}
	if match := horizonPattern.FindStringSubmatch(query); match != nil {
		if years, err := strconv.Atoi(match[1]); err == nil && years > 0 {
			profile.InvestmentHorizonYears = models.IntPtr(years)
		}
	}

	switch {
	case strings.Contains(lower, "aggressive") || strings.Contains(lower, "high risk"):
		profile.RiskTolerance = models.RiskPtr(models.RiskAggressive)
	case strings.Contains(lower, "conservative") || strings.Contains(lower, "low risk") || strings.Contains(lower, "safe"):
		profile.RiskTolerance = models.RiskPtr(models.RiskConservative)
	case strings.Contains(lower, "moderate"):
		profile.RiskTolerance = models.RiskPtr(models.RiskModerate)
	}

	switch {
	case strings.Contains(lower, "retire"):
		profile.InvestmentGoal = models.StringPtr("retirement")
	case strings.Contains(lower, "house") || strings.Contains(lower, "wedding") || strings.Contains(lower, "short term") || strings.Contains(lower, "short-term"):
		profile.InvestmentGoal = models.StringPtr("short term purchase")
	case strings.Contains(lower, "wealth") || strings.Contains(lower, "growth") || strings.Contains(lower, "grow my money"):
		profile.InvestmentGoal = models.StringPtr("wealth growth")
	}

	return profile
}

// knownCompanies maps lowercase mentions to canonical company names for
// offline resolution.
var knownCompanies = map[string]string{
	"apple":      "Apple",
	"microsoft":  "Microsoft",
	"google":     "Alphabet",
	"alphabet":   "Alphabet",
	"amazon":     "Amazon",
	"tesla":      "Tesla",
	"nvidia":     "Nvidia",
	"meta":       "Meta",
	"netflix":    "Netflix",
	"jpmorgan":   "JPMorgan",
	"berkshire":  "Berkshire Hathaway",
	"exxon":      "Exxon Mobil",
	"walmart":    "Walmart",
	"coca-cola":  "Coca-Cola",
	"coca cola":  "Coca-Cola",
	"mcdonald's": "McDonald's",
	"mcdonalds":  "McDonald's",
	"intel":      "Intel",
	"ibm":        "IBM",
	"disney":     "Disney",
}

// ResolveCompany implements Collaborator using a fixed company table.
func (m *MockCollaborator) ResolveCompany(_ context.Context, query string) models.CompanyQuery {
	lower := strings.ToLower(query)

	names := make([]string, 0, len(knownCompanies))
	for name := range knownCompanies {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic match order

	for _, name := range names {
		if strings.Contains(lower, name) {
			return models.CompanyQuery{
				Intent:      "company",
				CompanyName: models.StringPtr(knownCompanies[name]),
			}
		}
	}
	return models.CompanyQuery{Intent: "profile"}
}

var (
	positiveWords = []string{"surge", "soar", "rally", "record", "beat", "growth", "gain", "strong", "upgrade", "boom", "bullish", "profit", "jump"}
	negativeWords = []string{"crash", "plunge", "fall", "drop", "loss", "fear", "recession", "cut", "weak", "downgrade", "slump", "bearish", "selloff", "sell-off"}
)

// ScoreHeadline implements Collaborator with keyword sentiment.
func (m *MockCollaborator) ScoreHeadline(_ context.Context, _ models.AssetClass, headline string) models.HeadlineScore {
	lower := strings.ToLower(headline)
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			return models.HeadlineScore{Headline: headline, Label: models.SentimentNegative, Score: 0.8}
		}
	}
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			return models.HeadlineScore{Headline: headline, Label: models.SentimentPositive, Score: 0.8}
		}
	}
	return models.HeadlineScore{Headline: headline, Label: models.SentimentNeutral, Score: 0.5}
}

// SuggestInvestmentAmount implements Collaborator. An explicit amount in
// the profile wins, then a mention in the query, then a fifth of monthly
// income, then the default.
func (m *MockCollaborator) SuggestInvestmentAmount(_ context.Context, query string, profile models.UserProfile) float64 {
	if profile.InvestmentAmount != nil && *profile.InvestmentAmount > 0 {
		return *profile.InvestmentAmount
	}
	if match := amountPattern.FindStringSubmatch(query); match != nil {
		if amount, ok := parseMoney(match[1], match[2]); ok && amount > 0 {
			return amount
		}
	}
	if profile.MonthlyIncome != nil && *profile.MonthlyIncome > 0 {
		return models.Round2(*profile.MonthlyIncome * 0.2)
	}
	return fallbackAmount
}

// GenerateNarrative implements Collaborator with a plain template.
func (m *MockCollaborator) GenerateNarrative(_ context.Context, profile models.UserProfile, base, adjusted models.Allocation, rationale string) string {
	var b strings.Builder
	b.WriteString("Here is a suggested portfolio allocation based on your profile.\n\n")

	if profile.Age != nil {
		fmt.Fprintf(&b, "Age: %d. ", *profile.Age)
	}
	if profile.RiskTolerance != nil {
		fmt.Fprintf(&b, "Risk tolerance: %s. ", *profile.RiskTolerance)
	}
	if profile.InvestmentGoal != nil {
		fmt.Fprintf(&b, "Goal: %s.", *profile.InvestmentGoal)
	}
	b.WriteString("\n\nRecommended allocation:\n")
	for _, asset := range models.AllAssetClasses {
		fmt.Fprintf(&b, "- %s: %.0f%%\n", asset, adjusted[asset]*100)
	}

	if rationale != "" {
		b.WriteString("\nMarket sentiment notes:\n")
		b.WriteString(rationale)
		b.WriteString("\n")
	}
	b.WriteString("\nThis is general information, not personalised financial advice.")
	return b.String()
}

// parseMoney converts a digits-and-commas string with an optional "k"
// suffix into a float.
func parseMoney(digits, suffix string) (float64, bool) {
	cleaned := strings.ReplaceAll(digits, ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if strings.EqualFold(suffix, "k") {
		value *= 1000
	}
	return value, true
}
