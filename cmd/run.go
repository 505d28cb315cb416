package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/currency"
	"github.com/sells-group/valuation-agent/internal/model"
	"github.com/sells-group/valuation-agent/internal/pipeline"
)

var (
	runAgent     string
	runRequestID string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Value a single property",
	Long:  "Values one property. With --agent the run behaves as if requested over A2A by that agent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := propertyFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		env, err := initRunner(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Runner.Run(ctx, model.NewSubject(p, runRequestID, runAgent))
		var fault *pipeline.FaultError
		if err != nil && !errors.As(err, &fault) {
			return eris.Wrap(err, "valuation run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(rec); encErr != nil {
			return eris.Wrap(encErr, "write record")
		}
		printSummary(os.Stderr, rec)

		if fault != nil {
			return eris.Wrapf(fault, "valuation stopped at %s", fault.Step)
		}
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	addPropertyFlags(f)
	f.StringVar(&runAgent, "agent", "", "simulate an A2A request from this agent")
	f.StringVar(&runRequestID, "request-id", "", "A2A request id (with --agent)")
	_ = runCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(runCmd)
}

func addPropertyFlags(fs *pflag.FlagSet) {
	fs.String("address", "", "property address (required)")
	fs.String("type", "single_family", "property type: single_family, condo, townhouse, multi_family")
	fs.Int("sqft", 0, "square footage")
	fs.Int("beds", 0, "bedrooms")
	fs.Float64("baths", 0, "bathrooms")
	fs.Int("year", 0, "year built")
	fs.Float64("lot", 0, "lot size in acres")
}

// propertyFromFlags builds a Property; numeric attributes are set only when
// their flag was given.
func propertyFromFlags(fs *pflag.FlagSet) (model.Property, error) {
	address, _ := fs.GetString("address")
	typ, _ := fs.GetString("type")
	t, err := model.ParsePropertyType(typ)
	if err != nil {
		return model.Property{}, err
	}

	p := model.Property{Address: address, Type: t}
	if fs.Changed("sqft") {
		v, _ := fs.GetInt("sqft")
		p.SquareFootage = model.Int(v)
	}
	if fs.Changed("beds") {
		v, _ := fs.GetInt("beds")
		p.Bedrooms = model.Int(v)
	}
	if fs.Changed("baths") {
		v, _ := fs.GetFloat64("baths")
		p.Bathrooms = model.Float(v)
	}
	if fs.Changed("year") {
		v, _ := fs.GetInt("year")
		p.YearBuilt = model.Int(v)
	}
	if fs.Changed("lot") {
		v, _ := fs.GetFloat64("lot")
		p.LotSize = model.Float(v)
	}
	return p, nil
}

// printSummary writes a short human-readable summary of rec to w.
func printSummary(w io.Writer, rec model.Record) {
	fmt.Fprintf(w, "\nProperty: %s\n", rec.Subject.Address)
	fmt.Fprintf(w, "Step:     %s\n", rec.CurrentStep)
	if v := rec.Valuation; v != nil {
		fmt.Fprintf(w, "Value:    %s (%s - %s)\n", currency.USD(v.EstimatedValue), currency.USD(v.Range.Min), currency.USD(v.Range.Max))
		fmt.Fprintf(w, "Confidence: %s (%d)\n", v.ConfidenceLevel, v.ConfidenceScore)
	}
	for _, e := range rec.Log.Errors {
		fmt.Fprintf(w, "  error:   %s\n", e)
	}
	for _, warn := range rec.Log.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}

	zap.L().Info("valuation complete",
		zap.String("address", rec.Subject.Address),
		zap.String("step", string(rec.CurrentStep)),
		zap.Bool("has_estimate", rec.HasEstimate()),
	)
}
