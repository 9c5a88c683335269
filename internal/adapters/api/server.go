package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	grpcadapter "github.com/andrescamacho/factorio-calculator/internal/adapters/grpc"
	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
)

const (
	defaultHistoryLimit = 20
	maxRequestBody      = 1 << 20
)

// Options configures the HTTP server
type Options struct {
	Address           string
	RequestsPerSecond float64
	Burst             int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
}

// RequestRecorder receives per-route request metrics
type RequestRecorder interface {
	Instrument(route string, next http.Handler) http.Handler
	RecordRateLimited(route string)
	SessionOpened()
	SessionClosed()
}

// Server exposes the calculator over HTTP and websockets
type Server struct {
	opts     Options
	client   grpcadapter.CalculatorClient
	sessions *SessionFactory
	limiter  *rate.Limiter
	recorder RequestRecorder
	logger   common.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// NewServer creates a server; recorder may be nil
func NewServer(opts Options, client grpcadapter.CalculatorClient, sessions *SessionFactory, recorder RequestRecorder, logger common.Logger) *Server {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		opts:     opts,
		client:   client,
		sessions: sessions,
		limiter:  rate.NewLimiter(limit, burst),
		recorder: recorder,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.httpServer = &http.Server{
		Addr:         opts.Address,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the routed, rate-limited handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "GET /healthz", s.handleHealth)
	s.route(mux, "POST /api/v1/calculate", s.handleCalculate)
	s.route(mux, "GET /api/v1/recipes", s.handleRecipes)
	s.route(mux, "GET /api/v1/defaults", s.handleDefaults)
	s.route(mux, "PUT /api/v1/defaults/{category}", s.handleSetDefault)
	s.route(mux, "PUT /api/v1/exclusions/{recipe}", s.handleExclude(true))
	s.route(mux, "DELETE /api/v1/exclusions/{recipe}", s.handleExclude(false))
	s.route(mux, "GET /api/v1/calculations", s.handleCalculations)
	s.route(mux, "GET /api/v1/calculations/{id}", s.handleCalculation)
	s.route(mux, "GET /ws", s.handleSession)
	return mux
}

func (s *Server) route(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	var h http.Handler = s.limit(pattern, handler)
	if s.recorder != nil {
		h = s.recorder.Instrument(pattern, h)
	}
	mux.Handle(pattern, h)
}

// limit rejects requests beyond the token bucket with 429
func (s *Server) limit(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			if s.recorder != nil {
				s.recorder.RecordRateLimited(route)
			}
			w.Header().Set("Retry-After", "1")
			s.writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithLogger(r.Context(), s.logger)))
	})
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.logger.Log("INFO", "HTTP API listening", map[string]interface{}{
		"address": s.opts.Address,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req grpcadapter.CalculateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.client.Calculate(r.Context(), req.Targets, req.Name)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	result, err := s.client.ListRecipes(r.Context(), r.URL.Query().Get("item"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	result, err := s.client.ListDefaults(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Configuration string `json:"configuration"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.client.SetDefault(r.Context(), r.PathValue("category"), body.Configuration)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExclude(excluded bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.client.Exclude(r.Context(), r.PathValue("recipe"), excluded)
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleCalculations(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	records, err := s.client.ListCalculations(r.Context(), limit)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, grpcadapter.HistoryResult{Calculations: records})
}

func (s *Server) handleCalculation(w http.ResponseWriter, r *http.Request) {
	record, err := s.client.GetCalculation(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.Log("WARNING", "Websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxRequestBody)

	session := s.sessions.NewSession()
	if s.recorder != nil {
		s.recorder.SessionOpened()
		defer s.recorder.SessionClosed()
	}
	s.logger.Log("INFO", "Websocket session opened", map[string]interface{}{"session": session.ID()})
	defer s.logger.Log("INFO", "Websocket session closed", map[string]interface{}{"session": session.ID()})

	ctx := r.Context()
	for {
		var req SessionRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Log("DEBUG", "Websocket read ended", map[string]interface{}{
					"session": session.ID(),
					"error":   err.Error(),
				})
			}
			return
		}
		if err := conn.WriteJSON(session.Handle(ctx, &req)); err != nil {
			return
		}
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeJSON leaves '&' unescaped so serialized configurations read as machine&fuel|modules
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Log("WARNING", "Failed to write response", map[string]interface{}{
			"status": status,
			"error":  err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps application errors onto HTTP status codes
func statusFor(err error) int {
	var (
		validation  *shared.ValidationError
		invalidCfg  *shared.InvalidConfigurationError
		unknownItem *production.UnknownRecipeOrItemError
		unknownRec  *catalog.ErrUnknownRecipe
		notFound    *production.CalculationNotFoundError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &invalidCfg),
		errors.As(err, &unknownItem), errors.As(err, &unknownRec):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
