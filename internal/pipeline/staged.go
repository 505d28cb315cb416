package pipeline

import (
	"github.com/sells-group/valuation-agent/internal/model"
)

// Collected is the output of CollectData.
type Collected struct {
	Subject model.Subject
	Intake  model.IntakeAssessment
	Log     model.Log
	Step    model.Step
}

// Record implements the read view shared by every staged value.
func (c Collected) Record() model.Record {
	rec := model.NewRecord(c.Subject)
	intake := c.Intake
	rec.Intake = &intake
	rec.Log = c.Log
	rec.CurrentStep = c.Step
	return rec
}

// Compared is the output of AnalyzeComparables.
type Compared struct {
	Collected
	Comparables []model.Comparable
	Analysis    model.ComparableAnalysis
}

// Record implements the read view shared by every staged value.
func (c Compared) Record() model.Record {
	rec := c.Collected.Record()
	rec.Comparables = c.Comparables
	analysis := c.Analysis
	rec.ComparableAnalysis = &analysis
	return rec
}

// Analyzed is the output of AnalyzeMarket.
type Analyzed struct {
	Compared
	Trends       model.MarketTrends
	Neighborhood model.Neighborhood
	Adjustment   model.MarketAdjustment
}

// Record implements the read view shared by every staged value.
func (a Analyzed) Record() model.Record {
	rec := a.Compared.Record()
	trends, area, adj := a.Trends, a.Neighborhood, a.Adjustment
	rec.Trends = &trends
	rec.Neighborhood = &area
	rec.Adjustment = &adj
	return rec
}

// Valued is the output of Appraise. It is the only staged value that
// carries results.
type Valued struct {
	Analyzed
	Assessment model.FinalAssessment
	Valuation  model.Valuation
	Response   model.ResponsePayload
}

// Record implements the read view shared by every staged value.
func (v Valued) Record() model.Record {
	rec := v.Analyzed.Record()
	assessment, valuation, response := v.Assessment, v.Valuation, v.Response
	rec.Assessment = &assessment
	rec.Valuation = &valuation
	rec.Response = &response
	return rec
}
