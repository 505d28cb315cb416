package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/db"
	"github.com/sells-group/valuation-agent/internal/enrich"
	"github.com/sells-group/valuation-agent/internal/marketdata"
	"github.com/sells-group/valuation-agent/internal/model"
	"github.com/sells-group/valuation-agent/internal/pipeline"
)

// valuationEnv holds the runner and the resources it depends on.
type valuationEnv struct {
	Runner *pipeline.Runner
	Store  marketdata.SalesStore // nil for the synthetic source
}

// Close releases resources held by the environment.
func (ve *valuationEnv) Close() {
	if ve.Store != nil {
		_ = ve.Store.Close()
	}
}

// initRunner builds the market data source, the enrichment provider and
// the pipeline runner from cfg. Callers should defer env.Close().
func initRunner(ctx context.Context) (*valuationEnv, error) {
	if report := checkEnvironment(); !report.OK() {
		return nil, eris.Errorf("invalid environment: %v", report.Errors)
	}

	env := &valuationEnv{}
	var source marketdata.Source = marketdata.NewSynthetic(cfg.MarketData.Seed)
	if src := cfg.MarketData.Source; src == "sqlite" || src == "postgres" {
		st, err := openSalesStore(ctx)
		if err != nil {
			return nil, err
		}
		env.Store = st
		source = marketdata.NewSalesSource(st, source)
	}

	provider, err := enrich.New(cfg.Enrich, cfg.Anthropic, nil)
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "init enrichment provider")
	}

	opts, err := pipeline.Options(cfg)
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "init pipeline")
	}
	env.Runner = pipeline.New(source, provider, opts...)

	zap.L().Info("valuation runner ready",
		zap.String("marketdata", cfg.MarketData.Source),
		zap.String("provider", provider.Name()),
		zap.String("routing", cfg.Valuation.Routing),
	)
	return env, nil
}

// openSalesStore opens and migrates the recorded sales store named by
// marketdata.source. Anything other than postgres uses SQLite.
func openSalesStore(ctx context.Context) (marketdata.SalesStore, error) {
	var st marketdata.SalesStore
	switch cfg.MarketData.Source {
	case "postgres":
		pool, err := db.Open(ctx, cfg.MarketData.DatabaseURL, db.PoolConfig{MaxConns: cfg.MarketData.MaxConns})
		if err != nil {
			return nil, eris.Wrap(err, "open postgres sales store")
		}
		st = marketdata.NewPostgres(pool)
	default:
		sq, err := marketdata.NewSQLite(cfg.MarketData.SQLitePath)
		if err != nil {
			return nil, eris.Wrap(err, "open sqlite sales store")
		}
		st = sq
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate sales store")
	}
	return st, nil
}

// confidenceThreshold returns the configured minimum confidence.
func confidenceThreshold() model.ConfidenceLevel {
	if cfg.Valuation.ConfidenceThreshold == "" {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLevel(cfg.Valuation.ConfidenceThreshold)
}
