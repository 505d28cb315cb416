package enrich

import (
	"context"
	"fmt"

	"github.com/sells-group/valuation-agent/internal/currency"
)

// Deterministic renders a fixed template. It needs no credentials and is
// used offline and in tests.
type Deterministic struct{}

// Name implements Provider.
func (Deterministic) Name() string { return "deterministic" }

// Summarize implements Provider.
func (Deterministic) Summarize(_ context.Context, req SummaryRequest) (string, error) {
	p := req.Payload
	return fmt.Sprintf(`Property Valuation Response for %s:

Summary: Professional valuation completed for %s
Estimated Value: %s
Confidence: %s (%d%%)

Key Findings:
- Based on comparable sales analysis
- Market conditions considered
- %s

Recommendation: Valuation suitable for mortgage lending purposes`,
		req.RequestingAgent,
		p.PropertyAddress,
		currency.USD(p.EstimatedValue),
		p.ConfidenceLevel, p.ConfidenceScore,
		p.AppraiserNotes,
	), nil
}
