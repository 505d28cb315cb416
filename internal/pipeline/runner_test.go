package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-agent/internal/config"
	"github.com/sells-group/valuation-agent/internal/enrich"
	"github.com/sells-group/valuation-agent/internal/marketdata"
	"github.com/sells-group/valuation-agent/internal/model"
)

func TestRun_EndToEndScenario(t *testing.T) {
	r := New(scenarioSource(), enrich.Deterministic{}, WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "", ""))
	require.NoError(t, err)
	require.True(t, rec.HasEstimate())

	v := rec.Valuation
	assert.InDelta(t, 473800, v.EstimatedValue, 1e-6)
	assert.InDelta(t, 450110, v.Range.Min, 1e-6)
	assert.InDelta(t, 497490, v.Range.Max, 1e-6)
	assert.Equal(t, model.ConfidenceHigh, v.ConfidenceLevel)
	assert.Equal(t, 85, v.ConfidenceScore)

	assert.InDelta(t, 3, rec.Adjustment.TotalPercent, 1e-9)
	assert.Equal(t, model.StepReadyForUse, rec.CurrentStep)
	assert.Empty(t, rec.Log.Errors)
	assert.Empty(t, rec.Log.Warnings)
	assert.Empty(t, rec.Advisory)
	assert.Equal(t, "2024-12-15", rec.Response.ValuationDate)
}

func TestRun_ZeroSquareFootageIsFlagged(t *testing.T) {
	p := testProperty()
	p.SquareFootage = model.Int(0)
	r := New(scenarioSource(), enrich.Deterministic{}, WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(p, "", ""))
	require.NoError(t, err)
	require.True(t, rec.HasEstimate())

	assert.True(t, rec.ComparableAnalysis.AssumedSquareFootage)
	assert.Equal(t, model.ConfidenceMedium, rec.Valuation.ConfidenceLevel)
	assert.Equal(t, 70, rec.Valuation.ConfidenceScore)
	assert.Equal(t, []string{FlagMissingSquareFootage}, rec.Assessment.Limitations)
}

func TestRun_A2ADispatch(t *testing.T) {
	provider := &stubProvider{text: "Looks good for underwriting."}
	r := New(scenarioSource(), provider, WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "req-42", "mortgage_lending_agent"))
	require.NoError(t, err)

	assert.Equal(t, model.StepResponseSent, rec.CurrentStep)
	assert.Equal(t, "Looks good for underwriting.", rec.Advisory)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, []string{"Response sent to mortgage_lending_agent for request req-42"}, rec.Log.Warnings)
}

func TestRun_A2ADispatchWithoutRequestID(t *testing.T) {
	r := New(scenarioSource(), &stubProvider{text: "ok"}, WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "", "mortgage_lending_agent"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Response sent to mortgage_lending_agent for request N/A"}, rec.Log.Warnings)
}

func TestRun_SummaryFailureDoesNotFailRun(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}
	r := New(scenarioSource(), provider, WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "req-1", "lender"))
	require.NoError(t, err)

	assert.Equal(t, model.StepResponseSent, rec.CurrentStep)
	assert.Equal(t, rec.Response.AppraiserNotes, rec.Advisory)
	assert.Len(t, rec.Log.Warnings, 1)
	assert.Empty(t, rec.Log.Errors)
}

func TestRun_StandaloneNeverWarnsDispatch(t *testing.T) {
	provider := &stubProvider{text: "unused"}
	r := New(scenarioSource(), provider, WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "req-9", ""))
	require.NoError(t, err)

	assert.Equal(t, model.StepReadyForUse, rec.CurrentStep)
	assert.Zero(t, provider.calls)
	for _, w := range rec.Log.Warnings {
		assert.NotContains(t, w, "Response sent")
	}
}

func TestRun_LinearContinuesAfterIncompleteIntake(t *testing.T) {
	r := New(scenarioSource(), nil, WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(model.Property{Address: "9 Unknown Rd"}, "", ""))
	require.NoError(t, err)

	require.True(t, rec.HasEstimate())
	assert.Len(t, rec.Log.Errors, 1)
	assert.Equal(t, model.ConfidenceMedium, rec.Valuation.ConfidenceLevel)
	assert.True(t, rec.ComparableAnalysis.AssumedSquareFootage)
}

func TestRun_ConditionalSkipsAfterIncompleteIntake(t *testing.T) {
	provider := &stubProvider{text: "unused"}
	r := New(scenarioSource(), provider, WithRouting(RoutingConditional), WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(model.Property{Address: "9 Unknown Rd"}, "req-3", "lender"))
	require.NoError(t, err)

	assert.False(t, rec.HasEstimate())
	assert.Nil(t, rec.ComparableAnalysis)
	assert.Equal(t, model.StepReadyForUse, rec.CurrentStep)
	assert.Zero(t, provider.calls)
	assert.Len(t, rec.Log.Errors, 1)
}

func TestRun_ConditionalWarnsOnPoorComparables(t *testing.T) {
	src := scenarioSource()
	src.Sales = src.Sales[:2]
	r := New(src, nil,
		WithRouting(RoutingConditional),
		WithQualityPolicy(QualityDerived),
		WithClock(fixedClock),
	)

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "", ""))
	require.NoError(t, err)

	assert.Equal(t, model.QualityPoor, rec.ComparableAnalysis.Quality)
	assert.Equal(t, []string{WarnLimitedComparables}, rec.Log.Warnings)
	require.True(t, rec.HasEstimate())
	assert.Equal(t, model.ConfidenceMedium, rec.Valuation.ConfidenceLevel)
}

func TestRun_LinearDoesNotWarnOnPoorComparables(t *testing.T) {
	src := scenarioSource()
	src.Sales = src.Sales[:2]
	r := New(src, nil, WithQualityPolicy(QualityDerived), WithClock(fixedClock))

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "", ""))
	require.NoError(t, err)
	assert.Empty(t, rec.Log.Warnings)
}

func TestRun_InvalidPropertyFailsWorkflow(t *testing.T) {
	p := testProperty()
	p.Type = "castle"
	r := New(scenarioSource(), nil)

	rec, err := r.Run(context.Background(), model.Subject{Property: p})

	var fe *FaultError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageDataCollection, fe.Stage)
	assert.Equal(t, model.StepWorkflowFailed, fe.Step)
	assert.Equal(t, model.StepWorkflowFailed, rec.CurrentStep)
	require.Len(t, rec.Log.Errors, 1)
	assert.Contains(t, rec.Log.Errors[0], "Error in data_collection: ")
	assert.False(t, rec.HasEstimate())
}

func TestRun_SourceFailureFailsWorkflow(t *testing.T) {
	r := New(&marketdata.Static{Err: errors.New("connection refused")}, nil)

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "", ""))

	var fe *FaultError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageComparables, fe.Stage)
	assert.Equal(t, model.StepWorkflowFailed, rec.CurrentStep)
	assert.NotNil(t, rec.Intake)
	assert.Contains(t, rec.Log.Errors[0], "connection refused")
}

func TestRun_NoComparablesStampsStage(t *testing.T) {
	r := New(&marketdata.Static{}, nil)

	rec, err := r.Run(context.Background(), model.NewSubject(testProperty(), "", ""))
	require.Error(t, err)

	assert.Equal(t, model.Step("comparables_failed"), rec.CurrentStep)
	assert.Equal(t, []string{"Error in comparables: no comparable sales found"}, rec.Log.Errors)
}

func TestRun_PanicIsCaughtOnce(t *testing.T) {
	r := New(&panicSource{Static: *scenarioSource()}, nil)

	var (
		rec model.Record
		err error
	)
	require.NotPanics(t, func() {
		rec, err = r.Run(context.Background(), model.NewSubject(testProperty(), "", ""))
	})

	var fe *FaultError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageMarketAnalysis, fe.Stage)
	assert.Equal(t, model.Step("market_analysis_failed"), rec.CurrentStep)
	assert.NotNil(t, rec.ComparableAnalysis)
	assert.Nil(t, rec.Adjustment)
	assert.False(t, rec.HasEstimate())
	require.Len(t, rec.Log.Errors, 1)
	assert.Contains(t, rec.Log.Errors[0], "market feed exploded")
}

func TestRun_LogsNeverShrink(t *testing.T) {
	p := testProperty()
	p.YearBuilt = nil
	src := scenarioSource()
	src.Sales = src.Sales[:2]
	r := New(src, &stubProvider{text: "ok"},
		WithRouting(RoutingConditional),
		WithQualityPolicy(QualityDerived),
		WithClock(fixedClock),
	)
	ctx := context.Background()

	collected, err := CollectData(model.NewSubject(p, "req-7", "lender"))
	require.NoError(t, err)
	compared, err := r.AnalyzeComparables(ctx, collected)
	require.NoError(t, err)
	analyzed, err := r.AnalyzeMarket(ctx, compared)
	require.NoError(t, err)
	valued := r.Appraise(analyzed)

	final, err := r.Run(ctx, model.NewSubject(p, "req-7", "lender"))
	require.NoError(t, err)

	logs := []model.Log{
		model.NewLog(),
		collected.Log,
		compared.Log,
		analyzed.Log,
		valued.Log,
		final.Log,
	}
	for i := 1; i < len(logs); i++ {
		prev, next := logs[i-1], logs[i]
		require.GreaterOrEqual(t, len(next.Errors), len(prev.Errors))
		require.GreaterOrEqual(t, len(next.Warnings), len(prev.Warnings))
		assert.Equal(t, prev.Errors, next.Errors[:len(prev.Errors)])
		assert.Equal(t, prev.Warnings, next.Warnings[:len(prev.Warnings)])
	}
	assert.Len(t, final.Log.Warnings, 3)
}

func TestRun_StagesDoNotAliasLogs(t *testing.T) {
	collected, err := CollectData(model.NewSubject(model.Property{Address: "x"}, "", ""))
	require.NoError(t, err)

	before := collected.Record()
	extended := collected
	extended.Log = extended.Log.Warn("later")

	assert.Equal(t, []string{"later"}, extended.Log.Warnings)
	assert.Empty(t, before.Log.Warnings)
	assert.Empty(t, collected.Log.Warnings)
}

func TestParseRouting(t *testing.T) {
	r, err := ParseRouting("")
	require.NoError(t, err)
	assert.Equal(t, RoutingLinear, r)

	r, err = ParseRouting("conditional")
	require.NoError(t, err)
	assert.Equal(t, RoutingConditional, r)

	_, err = ParseRouting("graph")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	cfg := &config.Config{
		Enrich: config.EnrichConfig{TimeoutSecs: 7},
		Valuation: config.ValuationConfig{
			Routing:               "conditional",
			ComparableQuality:     "derived",
			MaxComparables:        2,
			MarketAdjustmentLimit: 4,
		},
	}
	opts, err := Options(cfg)
	require.NoError(t, err)

	r := New(scenarioSource(), nil, opts...)
	assert.Equal(t, RoutingConditional, r.routing)
	assert.Equal(t, QualityDerived, r.quality)
	assert.Equal(t, 2, r.maxComparables)
	assert.InDelta(t, 4, r.adjustmentLimit, 1e-9)
	assert.Equal(t, 7*time.Second, r.summaryTimeout)

	cfg.Valuation.Routing = "graph"
	_, err = Options(cfg)
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	r := New(scenarioSource(), nil, WithClock(fixedClock))

	bad := testProperty()
	bad.Type = "castle"
	subjects := []model.Subject{
		model.NewSubject(testProperty(), "a", ""),
		{Property: bad, RequestID: "b"},
		model.NewSubject(model.Property{Address: "9 Unknown Rd"}, "c", ""),
		model.NewSubject(testProperty(), "d", ""),
	}

	results := r.RunBatch(context.Background(), subjects, 2)
	require.Len(t, results, len(subjects))

	for i, res := range results {
		assert.Equal(t, subjects[i].RequestID, res.Record.Subject.RequestID)
	}
	assert.NoError(t, results[0].Err)
	assert.InDelta(t, 473800, results[0].Record.Valuation.EstimatedValue, 1e-6)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Len(t, results[2].Record.Log.Errors, 1)
	assert.Empty(t, results[3].Record.Log.Errors)
}

func TestRunBatch_Cancelled(t *testing.T) {
	r := New(scenarioSource(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := r.RunBatch(ctx, []model.Subject{model.NewSubject(testProperty(), "", "")}, 0)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.Equal(t, model.StepInitialized, results[0].Record.CurrentStep)
}
