package marketdata

import (
	"context"
	"slices"

	"github.com/sells-group/valuation-agent/internal/model"
)

// Static serves fixed market data. A non-nil Err is returned from every
// call instead.
type Static struct {
	Sales        []model.Comparable
	Trends       model.MarketTrends
	Neighborhood model.Neighborhood
	Err          error
}

// Comparables implements Source.
func (s *Static) Comparables(_ context.Context, _ model.Property, limit int) ([]model.Comparable, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return truncate(slices.Clone(s.Sales), limit), nil
}

// Market implements Source.
func (s *Static) Market(_ context.Context, _ model.Property) (model.MarketTrends, model.Neighborhood, error) {
	if s.Err != nil {
		return model.MarketTrends{}, model.Neighborhood{}, s.Err
	}
	area := s.Neighborhood
	area.Amenities = slices.Clone(area.Amenities)
	return s.Trends, area, nil
}
