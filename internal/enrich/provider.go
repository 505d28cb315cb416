// Package enrich produces the advisory summary returned to requesting
// agents. Summaries are informational; no valuation figure depends on them.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-agent/internal/model"
)

// SummaryRequest is the context handed to a Provider.
type SummaryRequest struct {
	RequestingAgent string
	RequestID       string
	Payload         model.ResponsePayload
}

// Provider writes an advisory summary for a completed valuation.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// Summary is the outcome of Summarize. When Fallback is set, Text holds the
// canned notes and Err the reason the provider could not be used.
type Summary struct {
	Text     string
	Fallback bool
	Err      error
}

// DefaultNotes is used when neither the provider nor the payload offers text.
const DefaultNotes = "Advisory summary unavailable; refer to the valuation figures."

var (
	ErrNoProvider   = eris.New("enrich: no provider configured")
	ErrEmptySummary = eris.New("enrich: provider returned an empty summary")
)

// Summarize calls p with the given timeout and never fails: any error,
// panic, or timeout yields the fallback text. A non-positive timeout
// leaves ctx unchanged.
func Summarize(ctx context.Context, p Provider, req SummaryRequest, timeout time.Duration) Summary {
	if p == nil {
		return fallback(req, ErrNoProvider)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := call(ctx, p, req)
	if err != nil {
		return fallback(req, err)
	}
	if text == "" {
		return fallback(req, ErrEmptySummary)
	}
	return Summary{Text: text}
}

func call(ctx context.Context, p Provider, req SummaryRequest) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("enrich: %s provider panicked: %v", p.Name(), r)
		}
	}()
	return p.Summarize(ctx, req)
}

func fallback(req SummaryRequest, err error) Summary {
	text := req.Payload.AppraiserNotes
	if text == "" {
		text = DefaultNotes
	}
	return Summary{Text: text, Fallback: true, Err: err}
}

// describe renders the valuation facts shared by every provider.
func describe(req SummaryRequest) string {
	return fmt.Sprintf("Requesting Agent: %s\nRequest ID: %s\n", req.RequestingAgent, requestID(req))
}

func requestID(req SummaryRequest) string {
	if req.RequestID == "" {
		return "N/A"
	}
	return req.RequestID
}
