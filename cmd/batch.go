package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/valuation-agent/internal/model"
	"github.com/sells-group/valuation-agent/internal/pipeline"
)

var (
	batchFile        string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Value every property in a YAML file",
	Long:  "Values properties concurrently and writes one JSON line per property to stdout, in input order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		subjects, err := readBatch(batchFile)
		if err != nil {
			return err
		}

		env, err := initRunner(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		failed, err := processBatch(ctx, env.Runner, subjects, concurrency, os.Stdout)
		if err != nil {
			return err
		}
		if failed > 0 {
			return eris.Errorf("%d of %d valuations failed", failed, len(subjects))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "YAML file with a properties list (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent valuations (default from config)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// batchEntry is one property in a batch file, optionally correlated as if
// requested by another agent.
type batchEntry struct {
	model.Property  `yaml:",inline"`
	RequestID       string `yaml:"request_id"`
	RequestingAgent string `yaml:"requesting_agent"`
}

type batchInput struct {
	Properties []batchEntry `yaml:"properties"`
}

// batchLine is one line of batch output.
type batchLine struct {
	Record model.Record `json:"record"`
	Error  string       `json:"error,omitempty"`
}

// readBatch loads the subjects listed in a batch file.
func readBatch(path string) ([]model.Subject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read batch file %s", path)
	}
	var in batchInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, eris.Wrapf(err, "parse batch file %s", path)
	}

	subjects := make([]model.Subject, 0, len(in.Properties))
	for _, e := range in.Properties {
		subjects = append(subjects, model.NewSubject(e.Property, e.RequestID, e.RequestingAgent))
	}
	return subjects, nil
}

// batchRunner is the subset of *pipeline.Runner used by processBatch.
type batchRunner interface {
	RunBatch(ctx context.Context, subjects []model.Subject, concurrency int) []pipeline.BatchResult
}

// processBatch values subjects and writes one JSON line per result to w.
// It returns the number of runs that ended in a fault.
func processBatch(ctx context.Context, r batchRunner, subjects []model.Subject, concurrency int, w io.Writer) (int, error) {
	if len(subjects) == 0 {
		zap.L().Info("no properties to value")
		return 0, nil
	}

	zap.L().Info("processing batch",
		zap.Int("properties", len(subjects)),
		zap.Int("concurrency", concurrency),
	)

	enc := json.NewEncoder(w)
	var failed int
	for _, res := range r.RunBatch(ctx, subjects, concurrency) {
		line := batchLine{Record: res.Record}
		if res.Err != nil {
			failed++
			line.Error = res.Err.Error()
		}
		if err := enc.Encode(line); err != nil {
			return failed, eris.Wrap(err, "write batch result")
		}
	}
	return failed, nil
}
