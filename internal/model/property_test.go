package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_MissingRequired(t *testing.T) {
	p := Property{Address: "1 Elm St", Bedrooms: Int(3), LotSize: Float(0.2)}
	assert.Equal(t, []string{FieldSquareFootage, FieldBathrooms, FieldYearBuilt}, p.MissingRequired())

	full := Property{SquareFootage: Int(1800), Bedrooms: Int(3), Bathrooms: Float(2), YearBuilt: Int(2005)}
	assert.Empty(t, full.MissingRequired())
}

func TestParsePropertyType(t *testing.T) {
	pt, err := ParsePropertyType("")
	require.NoError(t, err)
	assert.Equal(t, PropertyTypeSingleFamily, pt)

	pt, err = ParsePropertyType("condo")
	require.NoError(t, err)
	assert.Equal(t, PropertyTypeCondo, pt)

	_, err = ParsePropertyType("castle")
	assert.Error(t, err)
}

func TestNewSubject_DefaultsType(t *testing.T) {
	s := NewSubject(Property{Address: "1 Elm St"}, "req-1", "")
	assert.Equal(t, PropertyTypeSingleFamily, s.Type)
	assert.False(t, s.IsA2A())

	a := NewSubject(Property{Type: PropertyTypeCondo}, "req-2", "MortgageApproval")
	assert.Equal(t, PropertyTypeCondo, a.Type)
	assert.True(t, a.IsA2A())
}

func TestNewRecord_Initialized(t *testing.T) {
	r := NewRecord(NewSubject(Property{}, "", ""))
	assert.Equal(t, StepInitialized, r.CurrentStep)
	assert.False(t, r.HasEstimate())
	assert.Empty(t, r.Log.Errors)
}
