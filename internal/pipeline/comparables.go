package pipeline

import (
	"context"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-agent/internal/marketdata"
	"github.com/sells-group/valuation-agent/internal/model"
)

// QualityPolicy selects how the comparable quality tag is assigned.
type QualityPolicy string

const (
	// QualityFixed always reports GOOD.
	QualityFixed QualityPolicy = "fixed"
	// QualityDerived grades the set by count and price dispersion.
	QualityDerived QualityPolicy = "derived"
)

// ParseQualityPolicy parses a configured policy name.
func ParseQualityPolicy(s string) (QualityPolicy, error) {
	switch p := QualityPolicy(s); p {
	case QualityFixed, QualityDerived:
		return p, nil
	case "":
		return QualityFixed, nil
	default:
		return "", eris.Errorf("pipeline: unknown comparable quality policy %q", s)
	}
}

// Derived quality thresholds.
const (
	minComparables       = 3
	excellentComparables = 5
	excellentSpread      = 0.05
	fairSpread           = 0.15
)

// AnalyzeComparables fetches comparable sales for the subject and
// summarizes them. An empty set faults the stage with DATA_UNAVAILABLE.
func (r *Runner) AnalyzeComparables(ctx context.Context, in Collected) (Compared, error) {
	comps, err := r.source.Comparables(ctx, in.Subject.Property, r.maxComparables)
	if err != nil {
		return Compared{}, stageErr(CodeAPIFailure, "comparable sales unavailable", err)
	}
	if len(comps) == 0 {
		return Compared{}, stageErr(CodeDataUnavailable, "no comparable sales found", nil)
	}

	out := Compared{
		Collected:   in,
		Comparables: comps,
		Analysis:    summarizeComparables(comps, in.Subject.Property, r.quality),
	}
	out.Step = model.StepComparablesAnalyzed
	return out, nil
}

// knownSquareFootage returns the subject size when it is usable as a
// divisor. Absent and non-positive sizes are both unknown.
func knownSquareFootage(p model.Property) (int, bool) {
	if p.SquareFootage == nil || *p.SquareFootage <= 0 {
		return 0, false
	}
	return *p.SquareFootage, true
}

func summarizeComparables(comps []model.Comparable, p model.Property, policy QualityPolicy) model.ComparableAnalysis {
	prices := make([]float64, len(comps))
	for i, c := range comps {
		prices[i] = c.SoldPrice
	}
	avg := mean(prices)

	divisor, known := knownSquareFootage(p)
	if !known {
		divisor = marketdata.DefaultSquareFootage
	}

	return model.ComparableAnalysis{
		Count:                len(comps),
		AverageSalePrice:     avg,
		PricePerSquareFoot:   avg / float64(divisor),
		Quality:              gradeComparables(prices, policy),
		PriceRangeLow:        avg * 0.9,
		PriceRangeHigh:       avg * 1.1,
		AssumedSquareFootage: !known,
	}
}

func gradeComparables(prices []float64, policy QualityPolicy) model.ComparableQuality {
	if policy != QualityDerived {
		return model.QualityGood
	}
	if len(prices) < minComparables {
		return model.QualityPoor
	}

	cv := variation(prices)
	switch {
	case len(prices) >= excellentComparables && cv <= excellentSpread:
		return model.QualityExcellent
	case cv > fairSpread:
		return model.QualityFair
	default:
		return model.QualityGood
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variation returns the population coefficient of variation.
func variation(xs []float64) float64 {
	m := mean(xs)
	if m == 0 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss/float64(len(xs))) / m
}
