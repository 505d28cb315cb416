package marketdata

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/valuation-agent/internal/model"
)

// SQLiteStore is a SalesStore backed by modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens the database at dsn in WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS comparable_sales (
	id             TEXT PRIMARY KEY,
	address        TEXT NOT NULL,
	property_type  TEXT NOT NULL DEFAULT 'single_family',
	sold_price     REAL NOT NULL,
	square_footage INTEGER NOT NULL,
	bedrooms       INTEGER NOT NULL,
	bathrooms      REAL NOT NULL,
	sale_date      TEXT NOT NULL,
	days_on_market INTEGER NOT NULL DEFAULT 0,
	UNIQUE (address, sale_date)
);

CREATE INDEX IF NOT EXISTS idx_comparable_sales_match ON comparable_sales(property_type, square_footage, bedrooms);
`

// Migrate creates the sales table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertSales upserts sales keyed by address and sale date.
func (s *SQLiteStore) InsertSales(ctx context.Context, sales []model.Comparable) (int64, error) {
	if len(sales) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comparable_sales (id, `+salesColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (address, sale_date) DO UPDATE SET
			property_type = excluded.property_type,
			sold_price = excluded.sold_price,
			square_footage = excluded.square_footage,
			bedrooms = excluded.bedrooms,
			bathrooms = excluded.bathrooms,
			days_on_market = excluded.days_on_market`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert sale")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, c := range sales {
		res, err := stmt.ExecContext(ctx, uuid.New().String(),
			c.Address, string(saleType(c)), c.SoldPrice, c.SquareFootage,
			c.Bedrooms, c.Bathrooms, c.SaleDate, c.DaysOnMarket,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert sale %s", c.Address)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit sales")
	}
	return n, nil
}

// FindSales implements SalesStore.
func (s *SQLiteStore) FindSales(ctx context.Context, q SalesQuery) ([]model.Comparable, error) {
	query, args := q.build(func(int) string { return "?" })
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find sales")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Comparable
	for rows.Next() {
		var c model.Comparable
		var pt string
		if err := rows.Scan(&c.Address, &pt, &c.SoldPrice, &c.SquareFootage,
			&c.Bedrooms, &c.Bathrooms, &c.SaleDate, &c.DaysOnMarket); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sale")
		}
		c.PropertyType = model.PropertyType(pt)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate sales")
}

func saleType(c model.Comparable) model.PropertyType {
	if c.PropertyType == "" {
		return model.PropertyTypeSingleFamily
	}
	return c.PropertyType
}
