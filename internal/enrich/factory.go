package enrich

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-agent/internal/config"
	"github.com/sells-group/valuation-agent/internal/resilience"
	"github.com/sells-group/valuation-agent/pkg/anthropic"
)

// New returns the provider selected by cfg.Provider. client may be nil, in
// which case one is built from the Anthropic key when needed.
func New(cfg config.EnrichConfig, ac config.AnthropicConfig, client anthropic.Client) (Provider, error) {
	switch cfg.Provider {
	case "", "deterministic":
		return Deterministic{}, nil
	case "anthropic":
		if client == nil {
			if ac.Key == "" {
				return nil, eris.New("enrich: anthropic provider requires anthropic.key")
			}
			client = anthropic.NewClient(ac.Key)
		}
		return NewClaude(client, ClaudeConfig{
			Model:             ac.Model,
			MaxTokens:         ac.MaxTokens,
			Temperature:       ac.Temperature,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Breaker:           resilience.FromCircuitConfig(cfg.CircuitThreshold, cfg.CircuitResetSecs),
		}), nil
	default:
		return nil, eris.Errorf("enrich: unknown provider %q", cfg.Provider)
	}
}

// Timeout returns the configured summary timeout.
func Timeout(cfg config.EnrichConfig) time.Duration {
	return time.Duration(cfg.TimeoutSecs) * time.Second
}
