package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/enrich"
	"github.com/sells-group/valuation-agent/internal/model"
)

// Dispatch finishes a run. A2A runs with a response get an advisory
// summary and a warning recording the dispatch; everything else is marked
// ready for local use. Dispatch never fails.
func (r *Runner) Dispatch(ctx context.Context, rec model.Record) model.Record {
	if !rec.Subject.IsA2A() || rec.Response == nil {
		rec.CurrentStep = model.StepReadyForUse
		return rec
	}

	summary := enrich.Summarize(ctx, r.provider, enrich.SummaryRequest{
		RequestingAgent: rec.Subject.RequestingAgent,
		RequestID:       rec.Subject.RequestID,
		Payload:         *rec.Response,
	}, r.summaryTimeout)
	if summary.Fallback {
		zap.L().Warn("pipeline: advisory summary unavailable",
			zap.String("requesting_agent", rec.Subject.RequestingAgent),
			zap.String("request_id", rec.Subject.RequestID),
			zap.Error(summary.Err),
		)
	}

	rec.Advisory = summary.Text
	rec.Log = rec.Log.Warn(fmt.Sprintf("Response sent to %s for request %s",
		rec.Subject.RequestingAgent, requestIDOrNA(rec.Subject.RequestID)))
	rec.CurrentStep = model.StepResponseSent
	return rec
}

func requestIDOrNA(id string) string {
	if id == "" {
		return "N/A"
	}
	return id
}
