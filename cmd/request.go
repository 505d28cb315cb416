package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/valuation-agent/internal/a2a"
	"github.com/sells-group/valuation-agent/internal/model"
)

var (
	requestURL      string
	requestFile     string
	requestMortgage bool
	requestAs       string
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request a valuation from a peer agent",
	Long:  "Acts as the requesting agent: reads a property file, sends a PROPERTY_VALUATION envelope to a peer, validates the response and prints it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readProperty(requestFile)
		if err != nil {
			return err
		}

		client := a2a.NewClient(requestURL, requestAs, cfg.A2A)
		resp, err := client.RequestValuation(cmd.Context(), a2a.NewRequest(p))

		var out any = resp
		if err == nil && requestMortgage && resp.OK() {
			out = a2a.FormatForMortgage(*resp.Data)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(out); encErr != nil {
			return eris.Wrap(encErr, "write response")
		}

		if err != nil {
			return eris.Wrap(err, "request valuation")
		}
		if !resp.OK() {
			return eris.Errorf("peer returned %s: %s", resp.Status, resp.ErrorMessage)
		}
		zap.L().Info("valuation received",
			zap.String("request_id", resp.RequestID),
			zap.String("status", string(resp.Status)),
			zap.Float64("estimated_value", resp.Data.EstimatedValue),
		)
		return nil
	},
}

func init() {
	requestCmd.Flags().StringVar(&requestURL, "url", "http://localhost:8080", "base URL of the peer valuation agent")
	requestCmd.Flags().StringVar(&requestFile, "file", "", "YAML or JSON file describing the property (required)")
	requestCmd.Flags().BoolVar(&requestMortgage, "mortgage", false, "print the mortgage approval view")
	requestCmd.Flags().StringVar(&requestAs, "as", "mortgage_approval_agent", "agent name sent in the X-A2A-Agent header")
	_ = requestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(requestCmd)
}

// readProperty loads a single property from a YAML (or JSON) file.
func readProperty(path string) (model.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Property{}, eris.Wrapf(err, "read property file %s", path)
	}
	var p model.Property
	if err := yaml.Unmarshal(data, &p); err != nil {
		return model.Property{}, eris.Wrapf(err, "parse property file %s", path)
	}
	if _, err := model.ParsePropertyType(string(p.Type)); err != nil {
		return model.Property{}, err
	}
	return p, nil
}
