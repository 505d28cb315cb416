package model

import "math"

// ConfidenceLevel is the confidence tier of a valuation.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// rank orders confidence levels; unknown levels rank lowest.
func (c ConfidenceLevel) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Meets reports whether c is at least as strong as required. An empty
// requirement is always met.
func (c ConfidenceLevel) Meets(required ConfidenceLevel) bool {
	if required == "" {
		return true
	}
	return c.rank() >= required.rank()
}

// ConfidenceTier bundles a confidence level with its reported score and the
// half-width of the valuation range as a fraction of the estimate.
type ConfidenceTier struct {
	Level     ConfidenceLevel
	Score     int
	HalfWidth float64
}

// ValuationRange is the min/max band around an estimate.
type ValuationRange struct {
	Min float64 `json:"min_value"`
	Max float64 `json:"max_value"`
}

// Contains reports whether v lies within the range, inclusive.
func (r ValuationRange) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Valuation is the result of a completed run. The range is always derived
// from the estimate; use NewValuation to build one.
type Valuation struct {
	EstimatedValue  float64         `json:"estimated_value"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	ConfidenceScore int             `json:"confidence_score"`
	Range           ValuationRange  `json:"valuation_range"`
}

// NewValuation derives a Valuation from an estimate and its confidence tier.
func NewValuation(value float64, tier ConfidenceTier) Valuation {
	lo := value * (1 - tier.HalfWidth)
	hi := value * (1 + tier.HalfWidth)
	return Valuation{
		EstimatedValue:  value,
		ConfidenceLevel: tier.Level,
		ConfidenceScore: tier.Score,
		Range:           ValuationRange{Min: math.Min(lo, hi), Max: math.Max(lo, hi)},
	}
}

// FinalAssessment explains how the estimate was reached.
type FinalAssessment struct {
	BaseValue               float64  `json:"base_value"`
	MarketAdjustmentPercent float64  `json:"market_adjustment_percent"`
	EstimatedValue          float64  `json:"estimated_value"`
	ConfidenceScore         int      `json:"confidence_score"`
	ValuationMethod         string   `json:"valuation_method"`
	KeyValueDrivers         []string `json:"key_value_drivers"`
	Limitations             []string `json:"limitations"`
}

// ResponsePayload is the valuation data returned to a requesting agent.
type ResponsePayload struct {
	PropertyAddress string          `json:"property_address"`
	EstimatedValue  float64         `json:"estimated_value"`
	ValuationRange  ValuationRange  `json:"valuation_range"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	ConfidenceScore int             `json:"confidence_score"`
	ValuationDate   string          `json:"valuation_date"`
	AppraiserNotes  string          `json:"appraiser_notes"`
}
