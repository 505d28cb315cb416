package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := checkEnvironment()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"valid":    report.OK(),
			"errors":   report.Errors,
			"warnings": report.Warnings,
		}); err != nil {
			return eris.Wrap(err, "write report")
		}

		if !report.OK() {
			return eris.Errorf("environment check failed with %d error(s)", len(report.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkEnvironment validates cfg and logs every finding.
func checkEnvironment() config.EnvReport {
	report := config.ValidateEnvironment(cfg)
	for _, w := range report.Warnings {
		zap.L().Warn("environment", zap.String("warning", w))
	}
	for _, e := range report.Errors {
		zap.L().Error("environment", zap.String("error", e))
	}
	return report
}
