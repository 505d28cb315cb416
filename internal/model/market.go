package model

// MarketDirection is the recent price trend for the subject's market.
type MarketDirection string

const (
	DirectionRising    MarketDirection = "RISING"
	DirectionStable    MarketDirection = "STABLE"
	DirectionDeclining MarketDirection = "DECLINING"
)

// Level is a coarse three-step scale used for inventory, demand and crime.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
)

// TransitAccess grades neighborhood transportation access.
type TransitAccess string

const (
	TransitExcellent TransitAccess = "EXCELLENT"
	TransitGood      TransitAccess = "GOOD"
	TransitFair      TransitAccess = "FAIR"
)

// MarketTrends is a snapshot of local market conditions.
type MarketTrends struct {
	Direction           MarketDirection `json:"market_direction"`
	PriceChange6Months  float64         `json:"price_change_6_months"`
	AverageDaysOnMarket int             `json:"average_days_on_market"`
	Inventory           Level           `json:"inventory_level"`
	BuyerDemand         Level           `json:"buyer_demand"`
}

// Neighborhood is a snapshot of neighborhood desirability factors.
type Neighborhood struct {
	SchoolRating     int           `json:"school_rating"`
	CrimeRate        Level         `json:"crime_rate"`
	WalkabilityScore int           `json:"walkability_score"`
	Amenities        []string      `json:"nearby_amenities"`
	TransitAccess    TransitAccess `json:"transportation_access"`
}

// AdjustmentFactors holds the per-factor market adjustments in percent.
type AdjustmentFactors struct {
	Trend        int `json:"trend_adjustment"`
	Demand       int `json:"demand_adjustment"`
	Inventory    int `json:"inventory_adjustment"`
	Neighborhood int `json:"neighborhood_adjustment"`
}

// Sum returns the unclamped total of all factors.
func (f AdjustmentFactors) Sum() int {
	return f.Trend + f.Demand + f.Inventory + f.Neighborhood
}

// MarketAdjustment is the signed percentage applied to the comparable base value.
type MarketAdjustment struct {
	Factors          AdjustmentFactors `json:"adjustment_factors"`
	TotalPercent     float64           `json:"total_adjustment_percent"`
	MarketConfidence ConfidenceLevel   `json:"market_confidence"`
}
