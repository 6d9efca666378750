package models

import "fmt"

// RiskTolerance categorizes how much volatility a user is willing to accept.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "Conservative"
	RiskModerate     RiskTolerance = "Moderate"
	RiskAggressive   RiskTolerance = "Aggressive"
)

// Valid reports whether the value is one of the known categories.
func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskConservative, RiskModerate, RiskAggressive:
		return true
	}
	return false
}

// UserProfile is the coarse financial profile extracted from a free-text
// query. Every field is optional; a nil pointer means the extractor could
// not determine the value. Profiles are immutable once produced.
type UserProfile struct {
	Age                    *int           `json:"age"`
	MonthlyIncome          *float64       `json:"monthly_income"`
	RiskTolerance          *RiskTolerance `json:"risk_tolerance"`
	InvestmentGoal         *string        `json:"investment_goal"`
	InvestmentHorizonYears *int           `json:"investment_horizon_years"`
	InvestmentAmount       *float64       `json:"investment_amount,omitempty"`
}

// Validate rejects profiles whose present fields are structurally invalid.
// Absent fields are always acceptable.
func (p UserProfile) Validate() error {
	if p.Age != nil && *p.Age < 0 {
		return fmt.Errorf("age must be non-negative, got %d", *p.Age)
	}
	if p.MonthlyIncome != nil && *p.MonthlyIncome < 0 {
		return fmt.Errorf("monthly income must be non-negative, got %.2f", *p.MonthlyIncome)
	}
	if p.RiskTolerance != nil && !p.RiskTolerance.Valid() {
		return fmt.Errorf("unknown risk tolerance %q", *p.RiskTolerance)
	}
	if p.InvestmentHorizonYears != nil && *p.InvestmentHorizonYears < 0 {
		return fmt.Errorf("investment horizon must be non-negative, got %d", *p.InvestmentHorizonYears)
	}
	if p.InvestmentAmount != nil && *p.InvestmentAmount < 0 {
		return fmt.Errorf("investment amount must be non-negative, got %.2f", *p.InvestmentAmount)
	}
	return nil
}

// IntPtr, FloatPtr, StringPtr and RiskPtr are small helpers for building
// profiles in tests and collaborator fallbacks.
func IntPtr(v int) *int                      { return &v }
func FloatPtr(v float64) *float64            { return &v }
func StringPtr(v string) *string             { return &v }
func RiskPtr(v RiskTolerance) *RiskTolerance { return &v }
