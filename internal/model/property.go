package model

import (
	"github.com/rotisserie/eris"
)

// PropertyType classifies the subject property.
type PropertyType string

const (
	PropertyTypeSingleFamily PropertyType = "single_family"
	PropertyTypeCondo        PropertyType = "condo"
	PropertyTypeTownhouse    PropertyType = "townhouse"
	PropertyTypeMultiFamily  PropertyType = "multi_family"
)

// Valid reports whether t is one of the supported property types.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeSingleFamily, PropertyTypeCondo, PropertyTypeTownhouse, PropertyTypeMultiFamily:
		return true
	default:
		return false
	}
}

// ParsePropertyType maps an inbound string to a PropertyType. An empty string
// yields single_family.
func ParsePropertyType(s string) (PropertyType, error) {
	if s == "" {
		return PropertyTypeSingleFamily, nil
	}
	t := PropertyType(s)
	if !t.Valid() {
		return t, eris.Errorf("model: unknown property type %q", s)
	}
	return t, nil
}

// Property holds the attributes supplied with a valuation request. Optional
// numeric attributes are nil when unknown.
type Property struct {
	Address       string       `json:"property_address" yaml:"property_address"`
	Type          PropertyType `json:"property_type" yaml:"property_type"`
	SquareFootage *int         `json:"square_footage" yaml:"square_footage"`
	Bedrooms      *int         `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms     *float64     `json:"bathrooms" yaml:"bathrooms"`
	YearBuilt     *int         `json:"year_built" yaml:"year_built"`
	LotSize       *float64     `json:"lot_size" yaml:"lot_size"`
}

// Required quantitative attributes, in reporting order.
const (
	FieldSquareFootage = "square_footage"
	FieldBedrooms      = "bedrooms"
	FieldBathrooms     = "bathrooms"
	FieldYearBuilt     = "year_built"
)

// MissingRequired lists the required attributes that are absent.
func (p Property) MissingRequired() []string {
	var missing []string
	if p.SquareFootage == nil {
		missing = append(missing, FieldSquareFootage)
	}
	if p.Bedrooms == nil {
		missing = append(missing, FieldBedrooms)
	}
	if p.Bathrooms == nil {
		missing = append(missing, FieldBathrooms)
	}
	if p.YearBuilt == nil {
		missing = append(missing, FieldYearBuilt)
	}
	return missing
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
