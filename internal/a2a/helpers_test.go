package a2a

import (
	"context"
	"time"

	"github.com/sells-group/valuation-agent/internal/enrich"
	"github.com/sells-group/valuation-agent/internal/marketdata"
	"github.com/sells-group/valuation-agent/internal/model"
	"github.com/sells-group/valuation-agent/internal/pipeline"
)

func testProperty() model.Property {
	return model.Property{
		Address:       "123 Main St, Anytown, ST 12345",
		Type:          model.PropertyTypeSingleFamily,
		SquareFootage: model.Int(2200),
		Bedrooms:      model.Int(4),
		Bathrooms:     model.Float(2.5),
		YearBuilt:     model.Int(2010),
		LotSize:       model.Float(0.25),
	}
}

func comp(price float64) model.Comparable {
	return model.Comparable{Address: "1 Comp Ct", SoldPrice: price, SquareFootage: 2200, Bedrooms: 4, Bathrooms: 2.5}
}

func testSource() *marketdata.Static {
	return &marketdata.Static{
		Sales: []model.Comparable{comp(450000), comp(460000), comp(470000)},
		Trends: model.MarketTrends{
			Direction:   model.DirectionDeclining,
			Inventory:   model.LevelModerate,
			BuyerDemand: model.LevelHigh,
		},
		Neighborhood: model.Neighborhood{SchoolRating: 8},
	}
}

func testRunner(src marketdata.Source, opts ...pipeline.Option) *pipeline.Runner {
	clock := func() time.Time { return time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC) }
	opts = append([]pipeline.Option{pipeline.WithClock(clock)}, opts...)
	return pipeline.New(src, enrich.Deterministic{}, opts...)
}

func fixedID() string { return "req-fixed" }

func testService(src marketdata.Source) *Service {
	return NewService(testRunner(src), "property_valuation_agent", WithIDGenerator(fixedID))
}

type runnerFunc func(ctx context.Context, s model.Subject) (model.Record, error)

func (f runnerFunc) Run(ctx context.Context, s model.Subject) (model.Record, error) {
	return f(ctx, s)
}
