package enrich

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/valuation-agent/internal/resilience"
	"github.com/sells-group/valuation-agent/pkg/anthropic"
)

const appraiserInstructions = `You are a residential property appraiser handling agent-to-agent communication.
You receive a completed valuation produced by a sales comparison analysis. Do not change any figure.
Format the response for the requesting agent with:
1. A clear valuation summary
2. A confidence assessment
3. Any important notes or limitations
4. Recommendations for the requesting agent
Keep the response under 200 words and use plain text.`

// ClaudeConfig tunes the Claude provider.
type ClaudeConfig struct {
	Model             string
	MaxTokens         int64
	Temperature       float64
	RequestsPerSecond float64
	Breaker           resilience.CircuitBreakerConfig
}

// Claude writes summaries with the Anthropic Messages API. Calls are rate
// limited and guarded by a circuit breaker.
type Claude struct {
	client  anthropic.Client
	cfg     ClaudeConfig
	breaker *resilience.CircuitBreaker
	limiter *rate.Limiter
}

// NewClaude returns a Claude provider over client.
func NewClaude(client anthropic.Client, cfg ClaudeConfig) *Claude {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Claude{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker(cfg.Breaker),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Name implements Provider.
func (c *Claude) Name() string { return "anthropic" }

// Summarize implements Provider.
func (c *Claude) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	payload, err := json.MarshalIndent(req.Payload, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "enrich: marshal payload")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "enrich: rate limit wait")
	}

	temp := c.cfg.Temperature
	msgReq := anthropic.MessageRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(appraiserInstructions),
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: describe(req) + "\nProperty Valuation Response:\n" + string(payload),
		}},
		Temperature: &temp,
	}

	resp, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return c.client.CreateMessage(ctx, msgReq)
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: anthropic summary")
	}

	resp.Usage.LogCost(c.cfg.Model, "advisory_summary")
	return resp.Text(), nil
}
