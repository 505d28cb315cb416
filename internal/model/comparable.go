package model

// Comparable is a recently sold property used as a pricing reference.
type Comparable struct {
	Address       string       `json:"address" yaml:"address"`
	PropertyType  PropertyType `json:"property_type,omitempty" yaml:"property_type"`
	SoldPrice     float64      `json:"sold_price" yaml:"sold_price"`
	SquareFootage int          `json:"square_footage" yaml:"square_footage"`
	Bedrooms      int          `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms     float64      `json:"bathrooms" yaml:"bathrooms"`
	SaleDate      string       `json:"sale_date" yaml:"sale_date"` // YYYY-MM-DD
	DaysOnMarket  int          `json:"days_on_market" yaml:"days_on_market"`
}

// ComparableQuality grades how well a comparable set supports a valuation.
type ComparableQuality string

const (
	QualityExcellent ComparableQuality = "EXCELLENT"
	QualityGood      ComparableQuality = "GOOD"
	QualityFair      ComparableQuality = "FAIR"
	QualityPoor      ComparableQuality = "POOR"
)

// ComparableAnalysis summarizes a comparable set.
type ComparableAnalysis struct {
	Count              int               `json:"number_of_comparables"`
	AverageSalePrice   float64           `json:"average_sale_price"`
	PricePerSquareFoot float64           `json:"price_per_square_foot"`
	Quality            ComparableQuality `json:"comparable_quality"`
	PriceRangeLow      float64           `json:"price_range_low"`
	PriceRangeHigh     float64           `json:"price_range_high"`
	// AssumedSquareFootage is set when the subject size was unknown and the
	// price per square foot was computed against the fallback divisor.
	AssumedSquareFootage bool `json:"assumed_square_footage,omitempty"`
}
