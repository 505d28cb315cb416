package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-agent/internal/config"
	"github.com/sells-group/valuation-agent/internal/marketdata"
	"github.com/sells-group/valuation-agent/internal/model"
)

const salesYAML = `sales:
  - address: 10 Recorded Way
    property_type: single_family
    sold_price: 455000
    square_footage: 2150
    bedrooms: 4
    bathrooms: 2.5
    sale_date: "2024-10-01"
    days_on_market: 21
`

func TestOpenSalesStore_SQLiteImportAndFind(t *testing.T) {
	useConfig(t, func(c *config.Config) { c.MarketData.Source = "sqlite" })
	ctx := context.Background()

	sales, err := marketdata.ReadSales(writeTemp(t, "sales.yaml", salesYAML))
	require.NoError(t, err)

	st, err := openSalesStore(ctx)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	n, err := st.InsertSales(ctx, sales)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p := model.Property{Type: model.PropertyTypeSingleFamily, SquareFootage: model.Int(2200), Bedrooms: model.Int(4)}
	found, err := st.FindSales(ctx, marketdata.NewSalesQuery(p, 5))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "10 Recorded Way", found[0].Address)
}
