package marketdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-agent/internal/model"
)

// Synthetic fabricates comparables and market conditions by perturbing the
// subject within small bounded ranges. Output is a deterministic function
// of the seed and the subject address.
type Synthetic struct {
	seed uint64
}

// NewSynthetic returns a Synthetic source. A zero seed picks a random one.
func NewSynthetic(seed uint64) *Synthetic {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Synthetic{seed: seed}
}

type compTemplate struct {
	address     string
	basePrice   int
	priceSpread int
	sqftSpread  float64 // fraction of the subject size
	bedSpread   int
	bathDelta   float64
	saleDate    string
	minDOM      int
	maxDOM      int
}

var compTemplates = []compTemplate{
	{address: "123 Similar St, Same City", basePrice: 450000, priceSpread: 50000, sqftSpread: 0.10, saleDate: "2024-10-15", minDOM: 15, maxDOM: 60},
	{address: "456 Nearby Ave, Same City", basePrice: 475000, priceSpread: 50000, sqftSpread: 0.15, bedSpread: 1, saleDate: "2024-11-02", minDOM: 10, maxDOM: 45},
	{address: "789 Close Blvd, Same City", basePrice: 435000, priceSpread: 40000, sqftSpread: 0.125, bathDelta: 0.5, saleDate: "2024-09-28", minDOM: 20, maxDOM: 80},
}

// Comparables implements Source.
func (s *Synthetic) Comparables(ctx context.Context, p model.Property, limit int) ([]model.Comparable, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "marketdata: synthetic comparables")
	}

	sqft, beds, baths := DefaultSquareFootage, DefaultBedrooms, DefaultBathrooms
	if p.SquareFootage != nil {
		sqft = *p.SquareFootage
	}
	if p.Bedrooms != nil {
		beds = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		baths = *p.Bathrooms
	}

	r := s.rng(p, 1)
	comps := make([]model.Comparable, 0, len(compTemplates))
	for _, t := range compTemplates {
		spread := int(math.Round(float64(sqft) * t.sqftSpread))
		comps = append(comps, model.Comparable{
			Address:       t.address,
			PropertyType:  p.Type,
			SoldPrice:     float64(t.basePrice + between(r, -t.priceSpread, t.priceSpread)),
			SquareFootage: max(1, sqft+between(r, -spread, spread)),
			Bedrooms:      max(0, beds+between(r, -t.bedSpread, t.bedSpread)),
			Bathrooms:     baths + t.bathDelta,
			SaleDate:      t.saleDate,
			DaysOnMarket:  between(r, t.minDOM, t.maxDOM),
		})
	}
	return truncate(comps, limit), nil
}

// Market implements Source.
func (s *Synthetic) Market(ctx context.Context, p model.Property) (model.MarketTrends, model.Neighborhood, error) {
	if err := ctx.Err(); err != nil {
		return model.MarketTrends{}, model.Neighborhood{}, eris.Wrap(err, "marketdata: synthetic market")
	}

	r := s.rng(p, 2)
	trends := model.MarketTrends{
		Direction:           pick(r, model.DirectionRising, model.DirectionStable, model.DirectionDeclining),
		PriceChange6Months:  math.Round((-5+r.Float64()*13)*100) / 100,
		AverageDaysOnMarket: between(r, 25, 65),
		Inventory:           pick(r, model.LevelLow, model.LevelModerate, model.LevelHigh),
		BuyerDemand:         pick(r, model.LevelHigh, model.LevelModerate, model.LevelLow),
	}
	area := model.Neighborhood{
		SchoolRating:     between(r, 6, 10),
		CrimeRate:        pick(r, model.LevelLow, model.LevelModerate, model.LevelHigh),
		WalkabilityScore: between(r, 40, 95),
		Amenities:        []string{"shopping", "parks", "restaurants"},
		TransitAccess:    pick(r, model.TransitExcellent, model.TransitGood, model.TransitFair),
	}
	return trends, area, nil
}

func (s *Synthetic) rng(p model.Property, stream uint64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(p.Address)) //nolint:errcheck
	return rand.New(rand.NewPCG(s.seed+stream, h.Sum64()))
}

// between returns a uniform int in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

func pick[T any](r *rand.Rand, opts ...T) T {
	return opts[r.IntN(len(opts))]
}
