package a2a

import (
	"github.com/sells-group/valuation-agent/internal/model"
)

// MortgageView is the valuation reshaped for a mortgage approval agent.
type MortgageView struct {
	PropertyValuation MortgageValuation `json:"property_valuation"`
	LoanToValue       LoanToValue       `json:"loan_to_value_calculation"`
	Flags             ValuationFlags    `json:"valuation_flags"`
}

// MortgageValuation carries the valuation figures under their mortgage
// names.
type MortgageValuation struct {
	EstimatedValue  float64               `json:"estimated_value"`
	ConfidenceLevel model.ConfidenceLevel `json:"confidence_level"`
	ConfidenceScore int                   `json:"confidence_score"`
	ValuationRange  model.ValuationRange  `json:"valuation_range"`
	AppraisalDate   string                `json:"appraisal_date"`
	AppraiserNotes  string                `json:"appraiser_notes"`
}

// LoanToValue is the input to a loan-to-value calculation.
type LoanToValue struct {
	EstimatedValue float64 `json:"estimated_value"`
	LTVReady       bool    `json:"ltv_ready"`
}

// ValuationFlags summarizes the valuation for underwriting rules.
type ValuationFlags struct {
	HighConfidence           bool `json:"high_confidence"`
	MarketStable             bool `json:"market_stable"`
	ComparableDataSufficient bool `json:"comparable_data_sufficient"`
}

// marketStableScore is the confidence score above which the market is
// reported stable.
const marketStableScore = 70

// FormatForMortgage reshapes valuation data for a mortgage approval agent.
func FormatForMortgage(d model.ResponsePayload) MortgageView {
	return MortgageView{
		PropertyValuation: MortgageValuation{
			EstimatedValue:  d.EstimatedValue,
			ConfidenceLevel: d.ConfidenceLevel,
			ConfidenceScore: d.ConfidenceScore,
			ValuationRange:  d.ValuationRange,
			AppraisalDate:   d.ValuationDate,
			AppraiserNotes:  d.AppraiserNotes,
		},
		LoanToValue: LoanToValue{
			EstimatedValue: d.EstimatedValue,
			LTVReady:       true,
		},
		Flags: ValuationFlags{
			HighConfidence:           d.ConfidenceLevel == model.ConfidenceHigh,
			MarketStable:             d.ConfidenceScore > marketStableScore,
			ComparableDataSufficient: true,
		},
	}
}
