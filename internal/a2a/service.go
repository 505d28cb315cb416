package a2a

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/model"
)

// Runner runs one valuation. *pipeline.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, s model.Subject) (model.Record, error)
}

// Service answers valuation requests from other agents.
type Service struct {
	runner    Runner
	agent     string
	threshold model.ConfidenceLevel
	newID     func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithConfidenceThreshold sets the confidence required when a request does
// not name one.
func WithConfidenceThreshold(level model.ConfidenceLevel) ServiceOption {
	return func(s *Service) { s.threshold = level }
}

// WithIDGenerator replaces the request id generator.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a Service that reports itself as agent.
func NewService(runner Runner, agent string, opts ...ServiceOption) *Service {
	s := &Service{
		runner:    runner,
		agent:     agent,
		threshold: model.ConfidenceMedium,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Agent returns the name the service reports in its envelopes.
func (s *Service) Agent() string { return s.agent }

// Process runs a valuation for requestingAgent and always returns a
// well-formed envelope. A run that faults or produces no estimate yields a
// degraded envelope; a panic yields an ERROR envelope.
func (s *Service) Process(ctx context.Context, req Request, requestingAgent string) (resp Response) {
	requestID := s.newID()
	defer func() {
		if p := recover(); p != nil {
			resp = ErrorEnvelope(eris.Errorf("a2a: valuation panicked: %v", p), requestID, s.agent)
		}
	}()

	log := zap.L().With(
		zap.String("request_id", requestID),
		zap.String("requesting_agent", requestingAgent),
	)
	log.Info("a2a: valuation requested",
		zap.String("address", req.Address),
		zap.String("context", req.RequestingContext),
		zap.String("urgency", req.Urgency),
	)

	rec, err := s.runner.Run(ctx, req.Subject(requestID, requestingAgent))
	if err != nil || !rec.HasEstimate() {
		resp = SafeResponse(rec, s.agent)
		resp.RequestID = requestID
		log.Warn("a2a: valuation degraded",
			zap.String("status", string(resp.Status)),
			zap.String("step", string(rec.CurrentStep)),
			zap.Error(err),
		)
		return resp
	}

	warnings := rec.Log.Warnings
	required := req.RequiredConfidence
	if required == "" {
		required = s.threshold
	}
	if !rec.Valuation.ConfidenceLevel.Meets(required) {
		warnings = rec.Log.Warn(fmt.Sprintf("Confidence %s is below the required %s",
			rec.Valuation.ConfidenceLevel, required)).Warnings
	}

	data := *rec.Response
	resp = Response{
		Status:          StatusSuccess,
		RequestID:       requestID,
		Agent:           s.agent,
		Data:            &data,
		Errors:          rec.Log.Errors,
		Warnings:        warnings,
		AdvisorySummary: rec.Advisory,
	}
	log.Info("a2a: valuation complete",
		zap.Float64("estimated_value", data.EstimatedValue),
		zap.String("confidence", string(data.ConfidenceLevel)),
	)
	return resp
}
