package llm

import (
	"encoding/json"
	"fmt"

	"github.com/smartwealth/advisor/internal/models"
)

// Prompt templates for each collaborator call. Every prompt requests raw
// JSON (or a bare number) so responses survive the best-effort parsing
// in parse.go.

const intentSystemPrompt = `You are an intent classifier for a financial advisor chatbot.
You MUST respond strictly in valid JSON that fits this schema:

{
  "intent": "Portfolio_Allocation" | "Investment_Prediction" | "Knowledge" | "General_Chat",
  "confidence": float between 0 and 1,
  "rationale": short string explanation
}

Rules:
- Portfolio_Allocation: the user asks about distributing money, allocating assets, retirement planning, or general investment strategy.
- Investment_Prediction: the user asks about future value, trends, "next month", "next year", or a market forecast.
- Knowledge: the user asks for definitions, explanations, or general financial literacy concepts.
- General_Chat: greetings, small talk, thanks, or queries unrelated to finance.
Output ONLY JSON. No extra text.`

const profileSystemPrompt = `You are a financial assistant that extracts structured user profile information from free-text queries.
Always output valid JSON ONLY that matches this schema:
{
  "age": int | null,
  "monthly_income": float | null,
  "risk_tolerance": "Conservative" | "Moderate" | "Aggressive" | null,
  "investment_goal": string | null,
  "investment_horizon_years": int | null
}
If info is missing, set it as null.`

const companySystemPrompt = `Classify the user's intent and extract the company name if relevant.
Valid intents: ["profile", "company"]

Rules:
1. "profile": the user asks about personal financial planning, portfolio allocation, savings, risk assessment or retirement.
2. "company": the user asks about a specific company or stock ticker (e.g. "Tesla", "AAPL").

Treat company names and tickers case-insensitively. Return the company name exactly as mentioned; if multiple are mentioned, return only the first. If none is mentioned, set "company_name" to null.

Respond ONLY in JSON:
{"intent": "profile" or "company", "company_name": "Tesla" or null}`

const sentimentSystemPrompt = `You are a financial sentiment classifier.
For each news headline, respond with one of:
- Positive (score between 0.6 and 1.0)
- Negative (score between 0.6 and 1.0)
- Neutral (score exactly 0.0)

Respond strictly in JSON like:
{"label": "Positive", "score": 0.87}`

const narrativeSystemPrompt = `You are a senior financial advisor. Provide a complete investment plan tailored to the user's goal. Consider the user profile, the base portfolio allocation, and the allocation adjusted for news sentiment.
Provide:
1. A clear summary of the user's financial situation.
2. An explanation of the base allocation.
3. How adjustments were made based on market news.
4. Detailed, actionable recommendations including warnings: avoid over-weighting volatile assets, rebalance annually or on major market news.
Be professional, empathetic and fully actionable. Act as the user's advisor; do not suggest consulting another one. Limit output to roughly 250-300 words.`

func buildIntentPrompt(query string) string {
	return fmt.Sprintf("User query: %s", query)
}

func buildProfilePrompt(query string) string {
	return fmt.Sprintf("User query: %s", query)
}

func buildSentimentPrompt(asset models.AssetClass, headline string) string {
	return fmt.Sprintf("Asset class: %s\nHeadline: %s", asset, headline)
}

func buildAmountPrompt(query string, profile models.UserProfile) string {
	return fmt.Sprintf(`The user asked: %q

Their profile:
Age: %s
Monthly income: %s
Goal: %s
Horizon: %s years

Suggest a beginner-friendly amount they can invest as a lump sum, considering their income and goal. Only return a numeric value.`,
		query,
		formatIntField(profile.Age),
		formatFloatField(profile.MonthlyIncome),
		formatStringField(profile.InvestmentGoal),
		formatIntField(profile.InvestmentHorizonYears))
}

func buildNarrativePrompt(profile models.UserProfile, base, adjusted models.Allocation, rationale string) string {
	profileJSON, _ := json.Marshal(profile)
	baseJSON, _ := json.Marshal(base)
	adjustedJSON, _ := json.Marshal(adjusted)

	return fmt.Sprintf(`User profile: %s
Base portfolio allocation: %s
Adjusted portfolio allocation: %s
Reasoning from market sentiment/news:
%s`, profileJSON, baseJSON, adjustedJSON, rationale)
}

func formatIntField(v *int) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *v)
}

func formatFloatField(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatStringField(v *string) string {
	if v == nil {
		return "unknown"
	}
	return *v
}
