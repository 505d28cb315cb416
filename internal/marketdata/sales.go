package marketdata

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/model"
)

// SalesStore persists recorded comparable sales.
type SalesStore interface {
	Migrate(ctx context.Context) error
	InsertSales(ctx context.Context, sales []model.Comparable) (int64, error)
	FindSales(ctx context.Context, q SalesQuery) ([]model.Comparable, error)
	Close() error
}

// SalesQuery selects recorded sales similar to a subject. Zero bounds are
// not applied.
type SalesQuery struct {
	PropertyType model.PropertyType
	MinSqft      int
	MaxSqft      int
	MinBeds      int
	MaxBeds      int
	Limit        int
}

// Size tolerance used when matching recorded sales to a subject.
const sqftTolerance = 0.15

// NewSalesQuery matches sales of the same type within ±15% of the subject
// size and ±1 bedroom. Unknown attributes are not filtered on.
func NewSalesQuery(p model.Property, limit int) SalesQuery {
	q := SalesQuery{PropertyType: p.Type, Limit: limit}
	if q.PropertyType == "" {
		q.PropertyType = model.PropertyTypeSingleFamily
	}
	if p.SquareFootage != nil && *p.SquareFootage > 0 {
		sqft := float64(*p.SquareFootage)
		q.MinSqft = int(math.Round(sqft * (1 - sqftTolerance)))
		q.MaxSqft = int(math.Round(sqft * (1 + sqftTolerance)))
	}
	if p.Bedrooms != nil {
		q.MinBeds = max(1, *p.Bedrooms-1)
		q.MaxBeds = *p.Bedrooms + 1
	}
	return q
}

const salesColumns = "address, property_type, sold_price, square_footage, bedrooms, bathrooms, sale_date, days_on_market"

// build renders q as a SELECT using placeholder(n) for the nth argument.
func (q SalesQuery) build(placeholder func(n int) string) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, placeholder(len(args))))
	}

	add("property_type = %s", string(q.PropertyType))
	if q.MinSqft > 0 {
		add("square_footage >= %s", q.MinSqft)
	}
	if q.MaxSqft > 0 {
		add("square_footage <= %s", q.MaxSqft)
	}
	if q.MinBeds > 0 {
		add("bedrooms >= %s", q.MinBeds)
	}
	if q.MaxBeds > 0 {
		add("bedrooms <= %s", q.MaxBeds)
	}

	sql := "SELECT " + salesColumns + " FROM comparable_sales WHERE " +
		strings.Join(where, " AND ") + " ORDER BY sale_date DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += " LIMIT " + placeholder(len(args))
	}
	return sql, args
}

// SalesSource serves comparables from recorded sales, falling back to
// another Source when nothing matches. Market snapshots always come from
// the fallback.
type SalesSource struct {
	store    SalesStore
	fallback Source
}

// NewSalesSource returns a SalesSource over store.
func NewSalesSource(store SalesStore, fallback Source) *SalesSource {
	return &SalesSource{store: store, fallback: fallback}
}

// Comparables implements Source.
func (s *SalesSource) Comparables(ctx context.Context, p model.Property, limit int) ([]model.Comparable, error) {
	sales, err := s.store.FindSales(ctx, NewSalesQuery(p, limit))
	if err != nil {
		return nil, eris.Wrap(err, "marketdata: find recorded sales")
	}
	if len(sales) > 0 {
		return sales, nil
	}

	zap.L().Debug("marketdata: no recorded sales match, using fallback",
		zap.String("address", p.Address),
		zap.String("property_type", string(p.Type)),
	)
	return s.fallback.Comparables(ctx, p, limit)
}

// Market implements Source.
func (s *SalesSource) Market(ctx context.Context, p model.Property) (model.MarketTrends, model.Neighborhood, error) {
	return s.fallback.Market(ctx, p)
}
