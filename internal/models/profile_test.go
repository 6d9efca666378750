package models

import "testing"

func TestUserProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile UserProfile
		wantErr bool
	}{
		{
			name:    "empty profile is valid",
			profile: UserProfile{},
			wantErr: false,
		},
		{
			name: "complete profile",
			profile: UserProfile{
				Age:                    IntPtr(25),
				MonthlyIncome:          FloatPtr(50000),
				RiskTolerance:          RiskPtr(RiskModerate),
				InvestmentGoal:         StringPtr("buy a house in 10 years"),
				InvestmentHorizonYears: IntPtr(10),
			},
			wantErr: false,
		},
		{
			name:    "negative age rejected",
			profile: UserProfile{Age: IntPtr(-1)},
			wantErr: true,
		},
		{
			name:    "negative income rejected",
			profile: UserProfile{MonthlyIncome: FloatPtr(-100)},
			wantErr: true,
		},
		{
			name:    "unknown risk tolerance rejected",
			profile: UserProfile{RiskTolerance: RiskPtr(RiskTolerance("Reckless"))},
			wantErr: true,
		},
		{
			name:    "negative horizon rejected",
			profile: UserProfile{InvestmentHorizonYears: IntPtr(-5)},
			wantErr: true,
		},
		{
			name:    "zero age allowed",
			profile: UserProfile{Age: IntPtr(0)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIntentValid(t *testing.T) {
	for _, intent := range []Intent{IntentPortfolioAllocation, IntentInvestmentPrediction, IntentKnowledge, IntentGeneralChat} {
		if !intent.Valid() {
			t.Errorf("expected %s to be valid", intent)
		}
	}

	if Intent("Weather_Report").Valid() {
		t.Error("unexpected valid unknown intent")
	}
}
