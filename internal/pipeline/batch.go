package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/valuation-agent/internal/model"
)

// BatchResult is the outcome of one subject in a batch.
type BatchResult struct {
	Record model.Record
	Err    error
}

// RunBatch values subjects on a pool of at most concurrency workers.
// Results are returned in input order. A fault in one run does not affect
// the others; subjects not yet started when ctx is cancelled report the
// context error.
func (r *Runner) RunBatch(ctx context.Context, subjects []model.Subject, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]BatchResult, len(subjects))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, s := range subjects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Record: model.NewRecord(s), Err: eris.Wrap(err, "pipeline: batch cancelled")}
				return nil
			}
			rec, err := r.Run(ctx, s)
			results[i] = BatchResult{Record: rec, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	zap.L().Info("pipeline: batch complete",
		zap.Int("total", len(subjects)),
		zap.Int("failed", failed),
		zap.Int("concurrency", concurrency),
	)
	return results
}
