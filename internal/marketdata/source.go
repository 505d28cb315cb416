// Package marketdata supplies comparable sales and market snapshots to the
// valuation pipeline.
package marketdata

import (
	"context"

	"github.com/sells-group/valuation-agent/internal/model"
)

// Source provides the market inputs for one subject property.
type Source interface {
	// Comparables returns recently sold properties similar to p, at most
	// limit entries when limit > 0.
	Comparables(ctx context.Context, p model.Property, limit int) ([]model.Comparable, error)

	// Market returns the local market trend and neighborhood snapshots.
	Market(ctx context.Context, p model.Property) (model.MarketTrends, model.Neighborhood, error)
}

// Subject defaults used when an attribute is unknown.
const (
	DefaultSquareFootage = 2000
	DefaultBedrooms      = 3
	DefaultBathrooms     = 2.0
)

func truncate(comps []model.Comparable, limit int) []model.Comparable {
	if limit > 0 && len(comps) > limit {
		return comps[:limit]
	}
	return comps
}
