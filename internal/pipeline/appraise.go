package pipeline

import (
	"fmt"
	"math"

	"github.com/sells-group/valuation-agent/internal/currency"
	"github.com/sells-group/valuation-agent/internal/model"
)

// ValuationMethod names the approach reported in the final assessment.
const ValuationMethod = "SALES_COMPARISON_APPROACH"

// Data-quality flags reported as limitations.
const (
	FlagMissingSquareFootage = "Missing square footage"
	FlagLimitedComparables   = "Limited comparables"
	FlagHighVolatility       = "High market volatility"
)

// volatileAdjustment is the absolute adjustment, in percent, above which
// the market is flagged as volatile.
const volatileAdjustment = 10.0

var keyValueDrivers = []string{
	"Comparable sales analysis",
	"Current market conditions",
	"Neighborhood characteristics",
}

// Confidence tiers indexed by flag count, capped at the last entry.
var confidenceTiers = []model.ConfidenceTier{
	{Level: model.ConfidenceHigh, Score: 85, HalfWidth: 0.05},
	{Level: model.ConfidenceMedium, Score: 70, HalfWidth: 0.10},
	{Level: model.ConfidenceLow, Score: 55, HalfWidth: 0.15},
}

// Tier returns the confidence tier for the given number of data-quality
// flags.
func Tier(flags int) model.ConfidenceTier {
	return confidenceTiers[min(max(flags, 0), len(confidenceTiers)-1)]
}

// Appraise applies the market adjustment to the comparable average and
// builds every result field at once.
func (r *Runner) Appraise(in Analyzed) Valued {
	base := in.Analysis.AverageSalePrice
	pct := in.Adjustment.TotalPercent
	value := base * (1 + pct/100)

	flags := qualityFlags(in)
	tier := Tier(len(flags))
	valuation := model.NewValuation(value, tier)

	out := Valued{
		Analyzed: in,
		Assessment: model.FinalAssessment{
			BaseValue:               base,
			MarketAdjustmentPercent: pct,
			EstimatedValue:          value,
			ConfidenceScore:         tier.Score,
			ValuationMethod:         ValuationMethod,
			KeyValueDrivers:         append([]string(nil), keyValueDrivers...),
			Limitations:             flags,
		},
		Valuation: valuation,
		Response: model.ResponsePayload{
			PropertyAddress: in.Subject.Address,
			EstimatedValue:  valuation.EstimatedValue,
			ValuationRange:  valuation.Range,
			ConfidenceLevel: valuation.ConfidenceLevel,
			ConfidenceScore: valuation.ConfidenceScore,
			ValuationDate:   r.now().Format("2006-01-02"),
			AppraiserNotes:  fmt.Sprintf("Valuation based on %d comparable sales with %s market adjustment", in.Analysis.Count, currency.SignedPercent(pct)),
		},
	}
	out.Step = model.StepValuationCompleted
	return out
}

func qualityFlags(in Analyzed) []string {
	flags := []string{}
	if _, ok := knownSquareFootage(in.Subject.Property); !ok {
		flags = append(flags, FlagMissingSquareFootage)
	}
	if in.Analysis.Count < minComparables {
		flags = append(flags, FlagLimitedComparables)
	}
	if math.Abs(in.Adjustment.TotalPercent) > volatileAdjustment {
		flags = append(flags, FlagHighVolatility)
	}
	return flags
}
