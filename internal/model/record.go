package model

// Step is the progress cursor of a run.
type Step string

const (
	StepInitialized         Step = "initialized"
	StepDataCollected       Step = "property_data_collected"
	StepComparablesAnalyzed Step = "comparables_analyzed"
	StepMarketAnalyzed      Step = "market_analyzed"
	StepValuationCompleted  Step = "valuation_completed"
	StepResponseSent        Step = "a2a_response_sent"
	StepReadyForUse         Step = "valuation_ready_for_use"
	StepWorkflowFailed      Step = "workflow_failed"
)

// FailedStep returns the cursor stamped when the named stage faults.
func FailedStep(stage string) Step {
	return Step(stage + "_failed")
}

// Completeness grades how many required attributes were supplied.
type Completeness string

const (
	CompletenessComplete   Completeness = "COMPLETE"
	CompletenessPartial    Completeness = "PARTIAL"
	CompletenessIncomplete Completeness = "INCOMPLETE"
)

// IntakeAssessment is the outcome of validating the inbound attributes.
type IntakeAssessment struct {
	Completeness  Completeness `json:"data_completeness"`
	MissingFields []string     `json:"missing_fields"`
	QualityScore  int          `json:"data_quality_score"`
}

// Subject is the immutable input of a run: the property plus A2A
// correlation. RequestingAgent is empty for standalone invocations.
type Subject struct {
	Property
	RequestID       string `json:"request_id,omitempty"`
	RequestingAgent string `json:"requesting_agent,omitempty"`
}

// NewSubject builds a Subject, defaulting an empty property type to
// single_family.
func NewSubject(p Property, requestID, requestingAgent string) Subject {
	if p.Type == "" {
		p.Type = PropertyTypeSingleFamily
	}
	return Subject{Property: p, RequestID: requestID, RequestingAgent: requestingAgent}
}

// IsA2A reports whether the run was requested by another agent.
func (s Subject) IsA2A() bool {
	return s.RequestingAgent != ""
}

// Record is the flattened view of a run at its current step. Derived
// artifacts are nil until the owning stage has completed.
type Record struct {
	Subject            Subject             `json:"subject"`
	Intake             *IntakeAssessment   `json:"intake,omitempty"`
	Comparables        []Comparable        `json:"comparable_properties,omitempty"`
	ComparableAnalysis *ComparableAnalysis `json:"comparable_analysis,omitempty"`
	Trends             *MarketTrends       `json:"market_trends,omitempty"`
	Neighborhood       *Neighborhood       `json:"neighborhood_data,omitempty"`
	Adjustment         *MarketAdjustment   `json:"market_adjustment,omitempty"`
	Assessment         *FinalAssessment    `json:"final_assessment,omitempty"`
	Valuation          *Valuation          `json:"valuation,omitempty"`
	Response           *ResponsePayload    `json:"response_data,omitempty"`
	Advisory           string              `json:"advisory_summary,omitempty"`
	CurrentStep        Step                `json:"current_step"`
	Log                Log                 `json:"log"`
}

// NewRecord returns the record of a run that has not started.
func NewRecord(s Subject) Record {
	return Record{Subject: s, CurrentStep: StepInitialized, Log: NewLog()}
}

// HasEstimate reports whether the run produced a valuation.
func (r Record) HasEstimate() bool {
	return r.Valuation != nil
}
