package pipeline

import (
	"github.com/sells-group/valuation-agent/internal/model"
)

// Stage names, used in progress markers and fault messages.
const (
	StageDataCollection = "data_collection"
	StageComparables    = "comparables"
	StageMarketAnalysis = "market_analysis"
	StageFinalValuation = "final_valuation"
	StageDispatch       = "a2a_communication"
)

// Code classifies a stage error.
type Code string

const (
	CodeInvalidProperty Code = "INVALID_PROPERTY"
	CodeAPIFailure      Code = "API_FAILURE"
	CodeConfiguration   Code = "CONFIGURATION_ERROR"
	CodeDataUnavailable Code = "DATA_UNAVAILABLE"
)

// Fatal reports whether a fault with this code fails the whole workflow.
func (c Code) Fatal() bool {
	switch c {
	case CodeInvalidProperty, CodeAPIFailure, CodeConfiguration:
		return true
	default:
		return false
	}
}

// StageError is an error raised by a stage with a known classification.
type StageError struct {
	Code    Code
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(code Code, msg string, err error) *StageError {
	return &StageError{Code: code, Message: msg, Err: err}
}

// FaultError reports that a run terminated because a stage faulted. Step is
// the progress marker stamped on the partial record.
type FaultError struct {
	Stage string
	Step  model.Step
	Err   error
}

func (e *FaultError) Error() string {
	return "pipeline: " + e.Stage + " failed: " + e.Err.Error()
}

func (e *FaultError) Unwrap() error { return e.Err }
