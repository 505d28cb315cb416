package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/marketdata"
)

var salesFile string

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Manage the recorded comparable sales store",
}

var salesMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the comparable sales schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSalesStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zap.L().Info("sales store migrated", zap.String("source", cfg.MarketData.Source))
		return nil
	},
}

var salesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import recorded sales from an .xlsx or .yaml file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sales, err := marketdata.ReadSales(salesFile)
		if err != nil {
			return err
		}

		st, err := openSalesStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.InsertSales(ctx, sales)
		if err != nil {
			return eris.Wrap(err, "import sales")
		}

		zap.L().Info("sales imported",
			zap.String("file", salesFile),
			zap.Int("read", len(sales)),
			zap.Int64("written", n),
		)
		return nil
	},
}

func init() {
	salesImportCmd.Flags().StringVar(&salesFile, "file", "", "sales file, .xlsx or .yaml (required)")
	_ = salesImportCmd.MarkFlagRequired("file")

	salesCmd.AddCommand(salesMigrateCmd, salesImportCmd)
	rootCmd.AddCommand(salesCmd)
}
