package marketdata

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/valuation-agent/internal/model"
)

// ReadSales loads recorded sales from an .xlsx workbook or a .yaml file.
func ReadSales(path string) ([]model.Comparable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadSalesXLSX(path)
	case ".yaml", ".yml":
		return ReadSalesYAML(path)
	default:
		return nil, eris.Errorf("marketdata: unsupported sales file %q", path)
	}
}

type salesFile struct {
	Sales []model.Comparable `yaml:"sales"`
}

// ReadSalesYAML reads a file of the form `sales: [{address: ..., sold_price: ...}]`.
func ReadSalesYAML(path string) ([]model.Comparable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "marketdata: read sales yaml")
	}
	var f salesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "marketdata: parse sales yaml")
	}
	for i, c := range f.Sales {
		if err := validateSale(c); err != nil {
			return nil, eris.Wrapf(err, "marketdata: sale %d", i+1)
		}
	}
	return f.Sales, nil
}

// Header names recognized in a sales sheet. Matching is case-insensitive.
var xlsxColumns = []string{
	"address", "property_type", "sold_price", "square_footage",
	"bedrooms", "bathrooms", "sale_date", "days_on_market",
}

// ReadSalesXLSX reads the first sheet of a workbook whose first row names
// the columns. property_type and days_on_market are optional.
func ReadSalesXLSX(path string) ([]model.Comparable, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int)
	for j, cell := range sheet.Rows[0].Cells {
		index[strings.ToLower(strings.TrimSpace(cell.String()))] = j
	}
	for _, col := range []string{"address", "sold_price", "square_footage", "bedrooms", "bathrooms", "sale_date"} {
		if _, ok := index[col]; !ok {
			return nil, eris.Errorf("xlsx: missing column %q", col)
		}
	}

	var out []model.Comparable
	for i, row := range sheet.Rows[1:] {
		cells := make(map[string]string, len(xlsxColumns))
		for _, col := range xlsxColumns {
			if j, ok := index[col]; ok && j < len(row.Cells) {
				cells[col] = strings.TrimSpace(row.Cells[j].String())
			}
		}
		if cells["address"] == "" {
			continue
		}

		c, err := parseSaleRow(cells)
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: row %d", i+2)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseSaleRow(cells map[string]string) (model.Comparable, error) {
	c := model.Comparable{
		Address:  cells["address"],
		SaleDate: cells["sale_date"],
	}

	pt, err := model.ParsePropertyType(cells["property_type"])
	if err != nil {
		return c, err
	}
	c.PropertyType = pt

	if c.SoldPrice, err = strconv.ParseFloat(cells["sold_price"], 64); err != nil {
		return c, eris.Wrap(err, "sold_price")
	}
	if c.SquareFootage, err = strconv.Atoi(cells["square_footage"]); err != nil {
		return c, eris.Wrap(err, "square_footage")
	}
	if c.Bedrooms, err = strconv.Atoi(cells["bedrooms"]); err != nil {
		return c, eris.Wrap(err, "bedrooms")
	}
	if c.Bathrooms, err = strconv.ParseFloat(cells["bathrooms"], 64); err != nil {
		return c, eris.Wrap(err, "bathrooms")
	}
	if v := cells["days_on_market"]; v != "" {
		if c.DaysOnMarket, err = strconv.Atoi(v); err != nil {
			return c, eris.Wrap(err, "days_on_market")
		}
	}
	return c, validateSale(c)
}

func validateSale(c model.Comparable) error {
	switch {
	case c.Address == "":
		return eris.New("address is required")
	case c.SoldPrice <= 0:
		return eris.Errorf("sold_price must be positive, got %v", c.SoldPrice)
	case c.SquareFootage <= 0:
		return eris.Errorf("square_footage must be positive, got %d", c.SquareFootage)
	case c.SaleDate == "":
		return eris.New("sale_date is required")
	}
	return nil
}
