package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/config"
	"github.com/sells-group/valuation-agent/internal/enrich"
	"github.com/sells-group/valuation-agent/internal/marketdata"
	"github.com/sells-group/valuation-agent/internal/model"
)

// Routing selects the order in which stages run.
type Routing string

const (
	// RoutingLinear runs all five stages in order.
	RoutingLinear Routing = "linear"
	// RoutingConditional skips to dispatch after intake errors and warns on
	// poor comparable quality.
	RoutingConditional Routing = "conditional"
)

// ParseRouting parses a configured routing name.
func ParseRouting(s string) (Routing, error) {
	switch r := Routing(s); r {
	case RoutingLinear, RoutingConditional:
		return r, nil
	case "":
		return RoutingLinear, nil
	default:
		return "", eris.Errorf("pipeline: unknown routing %q", s)
	}
}

// WarnLimitedComparables is appended under conditional routing when the
// comparable set is graded POOR.
const WarnLimitedComparables = "Limited comparable data available"

const (
	defaultMaxComparables = 5
	defaultSummaryTimeout = 30 * time.Second
)

// Runner executes valuation runs. A Runner holds no per-run state and is
// safe for concurrent use.
type Runner struct {
	source          marketdata.Source
	provider        enrich.Provider
	routing         Routing
	quality         QualityPolicy
	adjustmentLimit float64
	maxComparables  int
	summaryTimeout  time.Duration
	now             func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRouting sets the routing policy.
func WithRouting(r Routing) Option { return func(rn *Runner) { rn.routing = r } }

// WithClock sets the clock used for valuation dates.
func WithClock(now func() time.Time) Option { return func(rn *Runner) { rn.now = now } }

// WithQualityPolicy sets the comparable quality policy.
func WithQualityPolicy(p QualityPolicy) Option { return func(rn *Runner) { rn.quality = p } }

// WithAdjustmentLimit sets the market adjustment clamp, in percent.
func WithAdjustmentLimit(limit float64) Option {
	return func(rn *Runner) { rn.adjustmentLimit = limit }
}

// WithMaxComparables caps the number of comparables requested.
func WithMaxComparables(n int) Option { return func(rn *Runner) { rn.maxComparables = n } }

// WithSummaryTimeout bounds the advisory summary call.
func WithSummaryTimeout(d time.Duration) Option {
	return func(rn *Runner) { rn.summaryTimeout = d }
}

// New creates a Runner reading market inputs from source and advisory
// text from provider. A nil provider always yields the fallback notes.
func New(source marketdata.Source, provider enrich.Provider, opts ...Option) *Runner {
	r := &Runner{
		source:          source,
		provider:        provider,
		routing:         RoutingLinear,
		quality:         QualityFixed,
		adjustmentLimit: DefaultAdjustmentLimit,
		maxComparables:  defaultMaxComparables,
		summaryTimeout:  defaultSummaryTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Options translates the valuation and enrichment config into Runner
// options.
func Options(cfg *config.Config) ([]Option, error) {
	routing, err := ParseRouting(cfg.Valuation.Routing)
	if err != nil {
		return nil, err
	}
	quality, err := ParseQualityPolicy(cfg.Valuation.ComparableQuality)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithRouting(routing),
		WithQualityPolicy(quality),
		WithSummaryTimeout(enrich.Timeout(cfg.Enrich)),
	}
	if cfg.Valuation.MarketAdjustmentLimit > 0 {
		opts = append(opts, WithAdjustmentLimit(cfg.Valuation.MarketAdjustmentLimit))
	}
	if cfg.Valuation.MaxComparables > 0 {
		opts = append(opts, WithMaxComparables(cfg.Valuation.MaxComparables))
	}
	return opts, nil
}

// Run values one subject. On a stage fault the partial record is returned
// together with a *FaultError; the record's step names the failed stage,
// or workflow_failed for non-recoverable codes.
func (r *Runner) Run(ctx context.Context, s model.Subject) (rec model.Record, err error) {
	log := zap.L().With(
		zap.String("address", s.Address),
		zap.String("request_id", s.RequestID),
		zap.String("requesting_agent", s.RequestingAgent),
	)
	log.Debug("pipeline: starting valuation")

	rec = model.NewRecord(s)
	stage := StageDataCollection
	defer func() {
		if p := recover(); p != nil {
			rec, err = r.fail(log, rec, stage, eris.Errorf("panic: %v", p))
		}
	}()

	collected, err := timed(log, stage, func() (Collected, error) {
		return CollectData(s)
	})
	if err != nil {
		return r.fail(log, rec, stage, err)
	}
	rec = collected.Record()

	if r.routing == RoutingConditional && collected.Log.HasErrors() {
		log.Info("pipeline: intake incomplete, skipping to dispatch")
		stage = StageDispatch
		return r.dispatch(ctx, log, rec), nil
	}

	stage = StageComparables
	compared, err := timed(log, stage, func() (Compared, error) {
		return r.AnalyzeComparables(ctx, collected)
	})
	if err != nil {
		return r.fail(log, rec, stage, err)
	}
	if r.routing == RoutingConditional && compared.Analysis.Quality == model.QualityPoor {
		compared.Log = compared.Log.Warn(WarnLimitedComparables)
	}
	rec = compared.Record()

	stage = StageMarketAnalysis
	analyzed, err := timed(log, stage, func() (Analyzed, error) {
		return r.AnalyzeMarket(ctx, compared)
	})
	if err != nil {
		return r.fail(log, rec, stage, err)
	}
	rec = analyzed.Record()

	stage = StageFinalValuation
	valued, _ := timed(log, stage, func() (Valued, error) {
		return r.Appraise(analyzed), nil
	})
	rec = valued.Record()

	stage = StageDispatch
	return r.dispatch(ctx, log, rec), nil
}

func (r *Runner) dispatch(ctx context.Context, log *zap.Logger, rec model.Record) model.Record {
	out, _ := timed(log, StageDispatch, func() (model.Record, error) {
		return r.Dispatch(ctx, rec), nil
	})
	log.Info("pipeline: valuation finished",
		zap.String("step", string(out.CurrentStep)),
		zap.Int("errors", len(out.Log.Errors)),
		zap.Int("warnings", len(out.Log.Warnings)),
	)
	return out
}

func (r *Runner) fail(log *zap.Logger, rec model.Record, stage string, err error) (model.Record, error) {
	step := model.FailedStep(stage)
	var se *StageError
	if errors.As(err, &se) && se.Code.Fatal() {
		step = model.StepWorkflowFailed
	}

	rec.Log = rec.Log.Error(fmt.Sprintf("Error in %s: %s", stage, err.Error()))
	rec.CurrentStep = step
	log.Error("pipeline: valuation terminated",
		zap.String("stage", stage),
		zap.String("step", string(step)),
		zap.Error(err),
	)
	return rec, &FaultError{Stage: stage, Step: step, Err: err}
}

// timed runs one stage and logs its duration.
func timed[T any](log *zap.Logger, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	duration := time.Since(start).Milliseconds()

	if err != nil {
		log.Warn("pipeline: stage failed",
			zap.String("stage", stage),
			zap.Int64("duration_ms", duration),
			zap.Error(err),
		)
	} else {
		log.Debug("pipeline: stage complete",
			zap.String("stage", stage),
			zap.Int64("duration_ms", duration),
		)
	}
	return out, err
}
