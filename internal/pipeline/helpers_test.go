package pipeline

import (
	"context"
	"time"

	"github.com/sells-group/valuation-agent/internal/enrich"
	"github.com/sells-group/valuation-agent/internal/marketdata"
	"github.com/sells-group/valuation-agent/internal/model"
)

var fixedNow = time.Date(2024, 12, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testProperty() model.Property {
	return model.Property{
		Address:       "123 Test St",
		Type:          model.PropertyTypeSingleFamily,
		SquareFootage: model.Int(2200),
		Bedrooms:      model.Int(4),
		Bathrooms:     model.Float(2.5),
		YearBuilt:     model.Int(2010),
		LotSize:       model.Float(0.25),
	}
}

func sale(address string, price float64) model.Comparable {
	return model.Comparable{
		Address:       address,
		PropertyType:  model.PropertyTypeSingleFamily,
		SoldPrice:     price,
		SquareFootage: 2150,
		Bedrooms:      4,
		Bathrooms:     2.5,
		SaleDate:      "2024-11-02",
		DaysOnMarket:  30,
	}
}

// scenarioSource averages 460000 with a net market adjustment of +3.
func scenarioSource() *marketdata.Static {
	return &marketdata.Static{
		Sales: []model.Comparable{
			sale("123 Similar St", 450000),
			sale("456 Nearby Ave", 460000),
			sale("789 Close Blvd", 470000),
		},
		Trends: model.MarketTrends{
			Direction:           model.DirectionDeclining,
			PriceChange6Months:  -1.5,
			AverageDaysOnMarket: 40,
			Inventory:           model.LevelModerate,
			BuyerDemand:         model.LevelHigh,
		},
		Neighborhood: model.Neighborhood{
			SchoolRating:     8,
			CrimeRate:        model.LevelLow,
			WalkabilityScore: 70,
			Amenities:        []string{"shopping", "parks", "restaurants"},
			TransitAccess:    model.TransitGood,
		},
	}
}

type stubProvider struct {
	text  string
	err   error
	calls int
}

func (*stubProvider) Name() string { return "stub" }

func (p *stubProvider) Summarize(context.Context, enrich.SummaryRequest) (string, error) {
	p.calls++
	return p.text, p.err
}

type panicSource struct {
	marketdata.Static
}

func (*panicSource) Market(context.Context, model.Property) (model.MarketTrends, model.Neighborhood, error) {
	panic("market feed exploded")
}
