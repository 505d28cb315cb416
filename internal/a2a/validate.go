package a2a

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ErrInvalidEnvelope is the root of every envelope validation failure.
var ErrInvalidEnvelope = eris.New("a2a: invalid envelope")

// FieldError reports a required envelope field that is absent.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "a2a: missing required field " + e.Field
}

func (e *FieldError) Unwrap() error { return ErrInvalidEnvelope }

var (
	requiredResponseFields = []string{"status", "request_id", "agent"}
	requiredSuccessData    = []string{"estimated_value", "confidence_level", "valuation_range"}
)

// Validate checks a raw response envelope.
func Validate(raw []byte) error {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return eris.Wrapf(ErrInvalidEnvelope, "a2a: decode response: %v", err)
	}
	return ValidateMap(m)
}

// ValidateMap checks a decoded response envelope. Every envelope needs
// status, request_id and agent; a SUCCESS envelope additionally needs
// data.estimated_value, data.confidence_level and data.valuation_range.
// Only key presence is checked.
func ValidateMap(m map[string]any) error {
	if m == nil {
		return eris.Wrap(ErrInvalidEnvelope, "a2a: empty response")
	}
	for _, f := range requiredResponseFields {
		if _, ok := m[f]; !ok {
			return &FieldError{Field: f}
		}
	}
	if m["status"] != string(StatusSuccess) {
		return nil
	}

	data, ok := m["data"].(map[string]any)
	if !ok {
		return &FieldError{Field: "data"}
	}
	for _, f := range requiredSuccessData {
		if _, ok := data[f]; !ok {
			return &FieldError{Field: "data." + f}
		}
	}
	return nil
}
