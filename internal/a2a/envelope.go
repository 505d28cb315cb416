// Package a2a implements the agent-to-agent valuation protocol: request and
// response envelopes, their validation, and the HTTP transport on both
// sides.
package a2a

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-agent/internal/model"
)

// RequestTypeValuation is the only request type this agent serves.
const RequestTypeValuation = "PROPERTY_VALUATION"

// Request envelope defaults.
const (
	ContextMortgageApproval = "MORTGAGE_APPROVAL"
	UrgencyStandard         = "STANDARD"
)

// Status is the outcome reported in a response envelope.
type Status string

const (
	StatusSuccess        Status = "SUCCESS"
	StatusPartialSuccess Status = "PARTIAL_SUCCESS"
	StatusError          Status = "ERROR"
)

// Request is a valuation request envelope.
type Request struct {
	RequestType string `json:"request_type"`
	model.Property
	RequestingContext  string                `json:"requesting_context,omitempty"`
	Urgency            string                `json:"urgency,omitempty"`
	RequiredConfidence model.ConfidenceLevel `json:"required_confidence,omitempty"`
}

// NewRequest builds a request envelope for p with the standard mortgage
// context.
func NewRequest(p model.Property) Request {
	if p.Type == "" {
		p.Type = model.PropertyTypeSingleFamily
	}
	return Request{
		RequestType:        RequestTypeValuation,
		Property:           p,
		RequestingContext:  ContextMortgageApproval,
		Urgency:            UrgencyStandard,
		RequiredConfidence: model.ConfidenceMedium,
	}
}

// DecodeRequest parses an inbound request envelope. property_address must
// be present, though it may be empty; request_type, when given, must be
// PROPERTY_VALUATION.
func DecodeRequest(raw []byte) (Request, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Request{}, eris.Wrap(ErrInvalidEnvelope, "a2a: decode request")
	}
	if _, ok := keys["property_address"]; !ok {
		return Request{}, &FieldError{Field: "property_address"}
	}
	if err := normalizeIntegers(keys); err != nil {
		return Request{}, err
	}
	raw, err := json.Marshal(keys)
	if err != nil {
		return Request{}, eris.Wrap(err, "a2a: re-encode request")
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, eris.Wrapf(ErrInvalidEnvelope, "a2a: decode request: %v", err)
	}
	if req.RequestType != "" && req.RequestType != RequestTypeValuation {
		return Request{}, eris.Wrapf(ErrInvalidEnvelope, "a2a: unsupported request_type %q", req.RequestType)
	}
	return req, nil
}

// integerFields are decoded into ints; peers may send them as whole floats
// such as 2200.0.
var integerFields = []string{model.FieldSquareFootage, model.FieldBedrooms, model.FieldYearBuilt}

// maxExactInt is the largest magnitude a float64 represents exactly.
const maxExactInt = 1 << 53

// normalizeIntegers rewrites whole-valued float literals of integerFields
// as integer literals. Fractional values are rejected; non-numbers are left
// to the struct decoder.
func normalizeIntegers(keys map[string]json.RawMessage) error {
	for _, field := range integerFields {
		v, ok := keys[field]
		if !ok || len(v) == 0 || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
			continue
		}
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
			return eris.Wrapf(ErrInvalidEnvelope, "a2a: %s must be a whole number, got %s", field, v)
		}
		keys[field] = json.RawMessage(strconv.FormatInt(int64(f), 10))
	}
	return nil
}

// Subject converts the request into a pipeline subject correlated with
// requestID and the requesting agent.
func (r Request) Subject(requestID, requestingAgent string) model.Subject {
	return model.NewSubject(r.Property, requestID, requestingAgent)
}

// Response is a valuation response envelope. Data is nil on ERROR.
type Response struct {
	Status          Status                 `json:"status"`
	RequestID       string                 `json:"request_id"`
	Agent           string                 `json:"agent"`
	ErrorCode       string                 `json:"error_code,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
	Data            *model.ResponsePayload `json:"data"`
	Errors          []string               `json:"errors,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
	AdvisorySummary string                 `json:"advisory_summary,omitempty"`
}

type responseJSON struct {
	Status          Status                 `json:"status"`
	RequestID       string                 `json:"request_id"`
	Agent           string                 `json:"agent"`
	ErrorCode       string                 `json:"error_code,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
	Data            *model.ResponsePayload `json:"data"`
	Errors          *[]string              `json:"errors,omitempty"`
	Warnings        *[]string              `json:"warnings,omitempty"`
	AdvisorySummary string                 `json:"advisory_summary,omitempty"`
}

// MarshalJSON always emits the errors and warnings arrays on SUCCESS and
// PARTIAL_SUCCESS, and emits them on ERROR only when non-empty.
func (r Response) MarshalJSON() ([]byte, error) {
	out := responseJSON{
		Status:          r.Status,
		RequestID:       r.RequestID,
		Agent:           r.Agent,
		ErrorCode:       r.ErrorCode,
		ErrorMessage:    r.ErrorMessage,
		Data:            r.Data,
		AdvisorySummary: r.AdvisorySummary,
	}
	out.Errors = logField(r.Errors, r.Status != StatusError)
	out.Warnings = logField(r.Warnings, r.Status != StatusError)
	return json.Marshal(out)
}

func logField(entries []string, always bool) *[]string {
	if len(entries) == 0 && !always {
		return nil
	}
	if entries == nil {
		entries = []string{}
	}
	return &entries
}

// OK reports whether the response carries usable valuation data.
func (r Response) OK() bool {
	return r.Status != StatusError && r.Data != nil
}
