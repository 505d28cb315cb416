package pipeline

import (
	"context"
	"math"

	"github.com/sells-group/valuation-agent/internal/model"
)

// DefaultAdjustmentLimit bounds the market adjustment, in percent.
const DefaultAdjustmentLimit = 20.0

// AnalyzeMarket fetches the market snapshots and derives the signed
// market adjustment.
func (r *Runner) AnalyzeMarket(ctx context.Context, in Compared) (Analyzed, error) {
	trends, area, err := r.source.Market(ctx, in.Subject.Property)
	if err != nil {
		return Analyzed{}, stageErr(CodeAPIFailure, "market data unavailable", err)
	}

	out := Analyzed{
		Compared:     in,
		Trends:       trends,
		Neighborhood: area,
		Adjustment:   Adjust(trends, area, r.adjustmentLimit),
	}
	out.Step = model.StepMarketAnalyzed
	return out, nil
}

// Adjust computes the market adjustment for the given snapshots. The total
// is clamped to [-limit, limit]; market confidence is graded on the
// unclamped sum.
func Adjust(trends model.MarketTrends, area model.Neighborhood, limit float64) model.MarketAdjustment {
	f := model.AdjustmentFactors{
		Trend:        trendFactor(trends.Direction),
		Demand:       demandFactor(trends.BuyerDemand),
		Inventory:    inventoryFactor(trends.Inventory),
		Neighborhood: schoolFactor(area.SchoolRating),
	}
	sum := f.Sum()
	limit = math.Abs(limit)

	return model.MarketAdjustment{
		Factors:          f,
		TotalPercent:     math.Max(-limit, math.Min(limit, float64(sum))),
		MarketConfidence: marketConfidence(sum),
	}
}

func trendFactor(d model.MarketDirection) int {
	switch d {
	case model.DirectionRising:
		return 2
	case model.DirectionDeclining:
		return -2
	default:
		return 0
	}
}

func demandFactor(l model.Level) int {
	switch l {
	case model.LevelHigh:
		return 3
	case model.LevelLow:
		return -3
	default:
		return 0
	}
}

func inventoryFactor(l model.Level) int {
	switch l {
	case model.LevelHigh:
		return -2
	case model.LevelLow:
		return 2
	default:
		return 0
	}
}

func schoolFactor(rating int) int {
	switch {
	case rating >= 9:
		return 5
	case rating >= 7:
		return 2
	default:
		return -2
	}
}

func marketConfidence(sum int) model.ConfidenceLevel {
	switch abs := max(sum, -sum); {
	case abs <= 5:
		return model.ConfidenceHigh
	case abs <= 10:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
