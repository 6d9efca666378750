package models

// Intent is the classified purpose of a user query.
type Intent string

const (
	IntentPortfolioAllocation  Intent = "Portfolio_Allocation"
	IntentInvestmentPrediction Intent = "Investment_Prediction"
	IntentKnowledge            Intent = "Knowledge"
	IntentGeneralChat          Intent = "General_Chat"
)

// Valid reports whether the intent is one of the known values.
func (i Intent) Valid() bool {
	switch i {
	case IntentPortfolioAllocation, IntentInvestmentPrediction, IntentKnowledge, IntentGeneralChat:
		return true
	}
	return false
}

// IntentResult is the outcome of intent classification.
type IntentResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// CompanyQuery is the outcome of company resolution: whether the query is
// about the user's own finances or about a specific company/ticker.
type CompanyQuery struct {
	Intent      string  `json:"intent"` // "profile" or "company"
	CompanyName *string `json:"company_name"`
}
