package a2a

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/valuation-agent/internal/model"
)

// Error codes carried by ERROR envelopes.
const (
	CodeTimeout        = "A2A_TIMEOUT"
	CodeAuth           = "A2A_AUTH_ERROR"
	CodeNetwork        = "A2A_NETWORK_ERROR"
	CodeCommunication  = "A2A_COMMUNICATION_ERROR"
	CodeInvalidRequest = "A2A_INVALID_REQUEST"
	CodeRateLimited    = "A2A_RATE_LIMITED"
	CodeDisabled       = "A2A_DISABLED"
)

// SystemErrorNotes replaces the error message when a failed run recorded
// no errors of its own.
const SystemErrorNotes = "Valuation could not be completed due to system error"

// ErrorCode classifies a transport error by its message.
func ErrorCode(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return CodeTimeout
	case strings.Contains(msg, "authentication"), strings.Contains(msg, "credentials"):
		return CodeAuth
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection"):
		return CodeNetwork
	default:
		return CodeCommunication
	}
}

// ErrorEnvelope builds the ERROR envelope for a transport failure.
func ErrorEnvelope(err error, requestID, agent string) Response {
	code := ErrorCode(err)
	zap.L().Error("a2a: communication error",
		zap.String("request_id", requestID),
		zap.String("error_code", code),
		zap.Error(err),
	)
	return Response{
		Status:       StatusError,
		RequestID:    requestID,
		Agent:        agent,
		ErrorCode:    code,
		ErrorMessage: err.Error(),
	}
}

// SafeResponse builds a degraded envelope from whatever a failed or
// short-circuited run produced: PARTIAL_SUCCESS when an estimate exists,
// ERROR otherwise.
func SafeResponse(rec model.Record, agent string) Response {
	resp := Response{
		RequestID: rec.Subject.RequestID,
		Agent:     agent,
		Errors:    rec.Log.Errors,
		Warnings:  rec.Log.Warnings,
	}

	if rec.HasEstimate() && rec.Response != nil {
		data := *rec.Response
		resp.Status = StatusPartialSuccess
		resp.Data = &data
		resp.AdvisorySummary = rec.Advisory
		return resp
	}

	resp.Status = StatusError
	resp.ErrorMessage = SystemErrorNotes
	if len(rec.Log.Errors) > 0 {
		resp.ErrorMessage = strings.Join(rec.Log.Errors, "; ")
	}
	return resp
}
