package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/config"
	"github.com/sells-group/valuation-agent/internal/resilience"
)

// Client requests valuations from a peer valuation agent.
type Client struct {
	baseURL string
	agent   string
	http    *http.Client
	retry   resilience.RetryConfig
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithRetry replaces the retry policy.
func WithRetry(cfg resilience.RetryConfig) ClientOption {
	return func(c *Client) { c.retry = cfg }
}

// NewClient creates a Client that calls the peer at baseURL on behalf of
// agent.
func NewClient(baseURL, agent string, cfg config.A2AConfig, opts ...ClientOption) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		agent:   agent,
		http:    &http.Client{Timeout: timeout},
		retry:   resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger(c.baseURL, "valuation")
	}
	return c
}

// RequestValuation sends req to the peer and returns its validated
// response envelope. Transport failures and invalid envelopes return an
// ERROR envelope built by ErrorEnvelope together with the error.
func (c *Client) RequestValuation(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		err = eris.Wrap(err, "a2a: encode request")
		return ErrorEnvelope(err, "", c.agent), err
	}

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (Response, error) {
		return c.post(ctx, "/a2a/valuation", body)
	})
	if err != nil {
		return ErrorEnvelope(err, "", c.agent), err
	}

	zap.L().Debug("a2a: peer responded",
		zap.String("peer", c.baseURL),
		zap.String("status", string(resp.Status)),
		zap.String("request_id", resp.RequestID),
	)
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Response{}, eris.Wrap(err, "a2a: build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(AgentHeader, c.agent)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, eris.Wrap(err, "a2a: send request")
	}
	defer httpResp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxRequestBytes))
	if err != nil {
		return Response{}, eris.Wrap(err, "a2a: read response")
	}

	if resilience.IsTransientHTTPStatus(httpResp.StatusCode) {
		// A disabled peer stays disabled; hand back its envelope.
		if resp, err := decodeEnvelope(raw); err == nil && resp.ErrorCode == CodeDisabled {
			return resp, nil
		}
		return Response{}, resilience.NewTransientError(
			eris.Errorf("a2a: peer returned status %d", httpResp.StatusCode),
			httpResp.StatusCode,
		)
	}

	resp, err := decodeEnvelope(raw)
	if err != nil {
		return Response{}, eris.Wrapf(err, "a2a: peer returned status %d", httpResp.StatusCode)
	}
	return resp, nil
}

// decodeEnvelope validates and decodes a response envelope.
func decodeEnvelope(raw []byte) (Response, error) {
	if err := Validate(raw); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, eris.Wrap(err, "a2a: decode response")
	}
	return resp, nil
}
