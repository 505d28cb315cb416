package config

import (
	"fmt"
	"slices"
	"strings"
)

// EnvReport is the outcome of ValidateEnvironment. Errors block startup;
// warnings are informational.
type EnvReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether startup may proceed.
func (r EnvReport) OK() bool {
	return len(r.Errors) == 0
}

// ValidateEnvironment checks that cfg is usable before any valuation runs.
// A missing credential for the selected enrichment provider is a startup
// failure, never a pipeline failure.
func ValidateEnvironment(cfg *Config) EnvReport {
	r := EnvReport{Errors: []string{}, Warnings: []string{}}
	errorf := func(format string, args ...any) { r.Errors = append(r.Errors, fmt.Sprintf(format, args...)) }
	warnf := func(format string, args ...any) { r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...)) }

	switch cfg.Enrich.Provider {
	case "anthropic":
		if strings.TrimSpace(cfg.Anthropic.Key) == "" {
			errorf("anthropic.key is required when enrich.provider is anthropic (set VALUATION_ANTHROPIC_KEY)")
		}
	case "deterministic", "":
		if cfg.Anthropic.Key == "" {
			warnf("anthropic.key not set; advisory summaries use the deterministic template")
		}
	default:
		errorf("enrich.provider %q is not one of deterministic, anthropic", cfg.Enrich.Provider)
	}

	if t := cfg.Anthropic.Temperature; t < 0 || t > 1 {
		errorf("anthropic.temperature must be within [0, 1], got %v", t)
	}

	if !slices.Contains([]string{"linear", "conditional", ""}, cfg.Valuation.Routing) {
		errorf("valuation.routing %q is not one of linear, conditional", cfg.Valuation.Routing)
	}
	if !slices.Contains([]string{"fixed", "derived", ""}, cfg.Valuation.ComparableQuality) {
		errorf("valuation.comparable_quality %q is not one of fixed, derived", cfg.Valuation.ComparableQuality)
	}
	if !slices.Contains([]string{"HIGH", "MEDIUM", "LOW", ""}, cfg.Valuation.ConfidenceThreshold) {
		errorf("valuation.confidence_threshold %q is not one of HIGH, MEDIUM, LOW", cfg.Valuation.ConfidenceThreshold)
	}
	if cfg.Valuation.MaxComparables < 1 {
		errorf("valuation.max_comparables must be at least 1, got %d", cfg.Valuation.MaxComparables)
	}
	if l := cfg.Valuation.MarketAdjustmentLimit; l <= 0 || l > 50 {
		errorf("valuation.market_adjustment_limit must be within (0, 50], got %v", l)
	}

	switch cfg.MarketData.Source {
	case "synthetic", "":
		warnf("marketdata.source is synthetic; comparables and market data are simulated")
	case "sqlite":
		if cfg.MarketData.SQLitePath == "" {
			errorf("marketdata.sqlite_path is required when marketdata.source is sqlite")
		}
	case "postgres":
		if cfg.MarketData.DatabaseURL == "" {
			errorf("marketdata.database_url is required when marketdata.source is postgres")
		}
	default:
		errorf("marketdata.source %q is not one of synthetic, sqlite, postgres", cfg.MarketData.Source)
	}

	if !cfg.A2A.Enabled {
		warnf("a2a.enabled is false; inbound agent requests are rejected")
	}
	if cfg.A2A.TimeoutSecs <= 0 {
		errorf("a2a.timeout_secs must be positive, got %d", cfg.A2A.TimeoutSecs)
	}

	return r
}
