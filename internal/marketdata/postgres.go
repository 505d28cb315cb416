package marketdata

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-agent/internal/db"
	"github.com/sells-group/valuation-agent/internal/model"
)

// PostgresStore is a SalesStore backed by a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS comparable_sales (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	address        TEXT NOT NULL,
	property_type  TEXT NOT NULL DEFAULT 'single_family',
	sold_price     DOUBLE PRECISION NOT NULL,
	square_footage INTEGER NOT NULL,
	bedrooms       INTEGER NOT NULL,
	bathrooms      DOUBLE PRECISION NOT NULL,
	sale_date      TEXT NOT NULL,
	days_on_market INTEGER NOT NULL DEFAULT 0,
	UNIQUE (address, sale_date)
);

CREATE INDEX IF NOT EXISTS idx_comparable_sales_match ON comparable_sales(property_type, square_footage, bedrooms);
`

var salesUpsert = db.UpsertConfig{
	Table: "comparable_sales",
	Columns: []string{
		"address", "property_type", "sold_price", "square_footage",
		"bedrooms", "bathrooms", "sale_date", "days_on_market",
	},
	ConflictKeys: []string{"address", "sale_date"},
}

// Migrate creates the sales table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// InsertSales bulk-upserts sales keyed by address and sale date.
func (s *PostgresStore) InsertSales(ctx context.Context, sales []model.Comparable) (int64, error) {
	rows := make([][]any, len(sales))
	for i, c := range sales {
		rows[i] = []any{
			c.Address, string(saleType(c)), c.SoldPrice, c.SquareFootage,
			c.Bedrooms, c.Bathrooms, c.SaleDate, c.DaysOnMarket,
		}
	}
	n, err := db.BulkUpsert(ctx, s.pool, salesUpsert, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert sales")
	}
	return n, nil
}

// FindSales implements SalesStore.
func (s *PostgresStore) FindSales(ctx context.Context, q SalesQuery) ([]model.Comparable, error) {
	query, args := q.build(func(n int) string { return "$" + strconv.Itoa(n) })
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find sales")
	}
	defer rows.Close()

	var out []model.Comparable
	for rows.Next() {
		var c model.Comparable
		var pt string
		if err := rows.Scan(&c.Address, &pt, &c.SoldPrice, &c.SquareFootage,
			&c.Bedrooms, &c.Bathrooms, &c.SaleDate, &c.DaysOnMarket); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sale")
		}
		c.PropertyType = model.PropertyType(pt)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate sales")
}
