package a2a

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/valuation-agent/internal/config"
)

// AgentHeader names the requesting agent on inbound requests.
const AgentHeader = "X-A2A-Agent"

const maxRequestBytes = 1 << 20

// Server exposes a Service over HTTP.
type Server struct {
	svc     *Service
	enabled bool
	timeout time.Duration
	origins []string
	limiter *rate.Limiter
}

// NewServer creates a Server from the A2A and server config sections.
func NewServer(svc *Service, a2aCfg config.A2AConfig, srvCfg config.ServerConfig) *Server {
	limit := rate.Inf
	if a2aCfg.RateLimitRPS > 0 {
		limit = rate.Limit(a2aCfg.RateLimitRPS)
	}
	burst := a2aCfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	timeout := time.Duration(srvCfg.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(a2aCfg.TimeoutSecs) * time.Second
	}

	return &Server{
		svc:     svc,
		enabled: a2aCfg.Enabled,
		timeout: timeout,
		origins: srvCfg.AllowedOrigins,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", AgentHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/a2a", func(r chi.Router) {
		r.Post("/valuation", s.handleValuation)
		r.Post("/valuation/mortgage", s.handleMortgage)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"agent":       s.svc.Agent(),
		"a2a_enabled": s.enabled,
	})
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	resp, status := s.process(r)
	writeJSON(w, status, resp)
}

func (s *Server) handleMortgage(w http.ResponseWriter, r *http.Request) {
	resp, status := s.process(r)
	if !resp.OK() {
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, status, FormatForMortgage(*resp.Data))
}

// process admits, decodes and runs one request, returning the envelope and
// the HTTP status to send it with.
func (s *Server) process(r *http.Request) (Response, int) {
	reqID := middleware.GetReqID(r.Context())
	agent := s.svc.Agent()

	if !s.enabled {
		return rejection(reqID, agent, CodeDisabled, "a2a communication is disabled"), http.StatusServiceUnavailable
	}
	if !s.limiter.Allow() {
		return rejection(reqID, agent, CodeRateLimited, "rate limit exceeded"), http.StatusTooManyRequests
	}

	requester := r.Header.Get(AgentHeader)
	if requester == "" {
		return rejection(reqID, agent, CodeInvalidRequest, "missing "+AgentHeader+" header"), http.StatusBadRequest
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return ErrorEnvelope(eris.Wrap(err, "a2a: read request body"), reqID, agent), http.StatusBadRequest
	}
	req, err := DecodeRequest(body)
	if err != nil {
		return rejection(reqID, agent, CodeInvalidRequest, err.Error()), http.StatusBadRequest
	}

	resp := s.svc.Process(r.Context(), req, requester)
	if resp.Status == StatusError {
		return resp, http.StatusUnprocessableEntity
	}
	return resp, http.StatusOK
}

func rejection(requestID, agent, code, msg string) Response {
	return Response{
		Status:       StatusError,
		RequestID:    requestID,
		Agent:        agent,
		ErrorCode:    code,
		ErrorMessage: msg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("a2a: write response", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("a2a: request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requesting_agent", r.Header.Get(AgentHeader)),
			zap.Int("status", ww.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}
