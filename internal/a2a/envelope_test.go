package a2a

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-agent/internal/model"
)

func TestNewRequest_Defaults(t *testing.T) {
	p := testProperty()
	p.Type = ""

	req := NewRequest(p)
	assert.Equal(t, RequestTypeValuation, req.RequestType)
	assert.Equal(t, model.PropertyTypeSingleFamily, req.Type)
	assert.Equal(t, ContextMortgageApproval, req.RequestingContext)
	assert.Equal(t, UrgencyStandard, req.Urgency)
	assert.Equal(t, model.ConfidenceMedium, req.RequiredConfidence)
}

func TestRequest_JSONShape(t *testing.T) {
	raw, err := json.Marshal(NewRequest(testProperty()))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{
		"request_type", "property_address", "property_type", "square_footage", "bedrooms",
		"bathrooms", "year_built", "lot_size", "requesting_context", "urgency", "required_confidence",
	} {
		assert.Contains(t, m, key)
	}
	assert.InDelta(t, 2200, m["square_footage"], 1e-9)
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{
		"request_type": "PROPERTY_VALUATION",
		"property_address": "1 Elm St",
		"square_footage": 1800,
		"bathrooms": 1.5,
		"year_built": null
	}`))
	require.NoError(t, err)

	assert.Equal(t, "1 Elm St", req.Address)
	require.NotNil(t, req.SquareFootage)
	assert.Equal(t, 1800, *req.SquareFootage)
	assert.Nil(t, req.YearBuilt)
	assert.Nil(t, req.Bedrooms)

	s := req.Subject("req-1", "lender")
	assert.Equal(t, model.PropertyTypeSingleFamily, s.Type)
	assert.True(t, s.IsA2A())
}

func TestDecodeRequest_WholeFloats(t *testing.T) {
	req, err := DecodeRequest([]byte(`{
		"property_address": "1 A St",
		"square_footage": 2200.0,
		"bedrooms": 4.0,
		"bathrooms": 2.5,
		"year_built": 2.01e3
	}`))
	require.NoError(t, err)

	require.NotNil(t, req.SquareFootage)
	assert.Equal(t, 2200, *req.SquareFootage)
	require.NotNil(t, req.Bedrooms)
	assert.Equal(t, 4, *req.Bedrooms)
	require.NotNil(t, req.YearBuilt)
	assert.Equal(t, 2010, *req.YearBuilt)
	require.NotNil(t, req.Bathrooms)
	assert.InDelta(t, 2.5, *req.Bathrooms, 1e-9)
}

func TestDecodeRequest_EmptyAddressAllowed(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"property_address": ""}`))
	require.NoError(t, err)
	assert.Empty(t, req.Address)
}

func TestDecodeRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"not json", `{`, "invalid envelope"},
		{"missing address", `{"square_footage": 10}`, "property_address"},
		{"wrong type", `{"request_type": "TITLE_SEARCH", "property_address": "x"}`, "TITLE_SEARCH"},
		{"bad numeric", `{"property_address": "x", "bedrooms": "four"}`, "invalid envelope"},
		{"fractional integer", `{"property_address": "x", "square_footage": 2200.5}`, "square_footage must be a whole number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResponse_MarshalSuccess(t *testing.T) {
	resp := Response{
		Status:    StatusSuccess,
		RequestID: "req-1",
		Agent:     "property_valuation_agent",
		Data:      &model.ResponsePayload{EstimatedValue: 473800},
	}
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, []any{}, m["errors"])
	assert.Equal(t, []any{}, m["warnings"])
	assert.NotContains(t, m, "error_message")
	assert.NotContains(t, m, "advisory_summary")
	require.NoError(t, ValidateMap(m))
}

func TestResponse_MarshalError(t *testing.T) {
	resp := Response{
		Status:       StatusError,
		RequestID:    "req-1",
		Agent:        "property_valuation_agent",
		ErrorMessage: "boom",
	}
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Contains(t, m, "data")
	assert.Nil(t, m["data"])
	assert.NotContains(t, m, "errors")
	assert.NotContains(t, m, "warnings")
	assert.Equal(t, "boom", m["error_message"])
	assert.False(t, resp.OK())
}

func TestResponse_RoundTrip(t *testing.T) {
	in := Response{
		Status:    StatusPartialSuccess,
		RequestID: "req-2",
		Agent:     "a",
		Data:      &model.ResponsePayload{EstimatedValue: 1, ValuationRange: model.ValuationRange{Min: 1, Max: 1}},
		Errors:    []string{"Error in a2a_communication: x"},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Response
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Status, out.Status)
	assert.Equal(t, in.Errors, out.Errors)
	assert.Equal(t, []string{}, out.Warnings)
	assert.True(t, out.OK())
}
