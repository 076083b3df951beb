// Package httpapi exposes the optimizer over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/rsned/crafting-optimizer/internal/crafting/engine"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// Routes served by the API.
const (
	RouteOptimize = "/api/optimizecrafting"
	RouteHealth   = "/healthz"
)

// Client-facing error messages. Engine details are logged, never returned.
const (
	MsgInvalidInventory = "Invalid inventory data. Expected object with material quantities."
	MsgInternalError    = "Internal server error during optimization."
	MsgMaintenance      = "Service is under maintenance."
	MsgRateLimited      = "Too many requests."
	MsgMethodNotAllowed = "Method not allowed."
)

// Optimizer is the engine surface the API needs.
type Optimizer interface {
	Optimize(ctx context.Context, inventory map[string]int) (*crafting.OptimizationData, error)
}

// RequestRecorder receives per-request measurements.
type RequestRecorder interface {
	RecordHTTPRequest(route string, statusCode int, duration time.Duration)
}

// Options configures a Server.
type Options struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	Compression     bool
	Maintenance     bool

	// RequestsPerSecond enables the API rate limiter when positive.
	RequestsPerSecond float64
	Burst             int

	// MetricsPath and MetricsHandler mount a metrics endpoint when both are set.
	MetricsPath    string
	MetricsHandler http.Handler
}

// Server serves the optimize endpoint plus health and metrics.
type Server struct {
	optimizer   Optimizer
	items       int
	opts        Options
	logger      *slog.Logger
	recorder    RequestRecorder
	validate    *validator.Validate
	limiter     *rate.Limiter
	maintenance atomic.Bool
	handler     http.Handler
}

// NewServer creates a Server. itemCount is reported by the health check.
// A nil recorder drops request metrics.
func NewServer(opt Optimizer, itemCount int, opts Options, logger *slog.Logger, recorder RequestRecorder) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}

	s := &Server{
		optimizer: opt,
		items:     itemCount,
		opts:      opts,
		logger:    logger,
		recorder:  recorder,
		validate:  validator.New(),
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	s.maintenance.Store(opts.Maintenance)

	mux := http.NewServeMux()
	mux.Handle(RouteOptimize, s.apiOnly(http.HandlerFunc(s.handleOptimize)))
	mux.HandleFunc(RouteHealth, s.handleHealth)
	if opts.MetricsPath != "" && opts.MetricsHandler != nil {
		mux.Handle(opts.MetricsPath, opts.MetricsHandler)
	}

	s.handler = s.requestID(s.accessLog(s.recoverPanics(mux)))
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetMaintenance toggles maintenance mode.
func (s *Server) SetMaintenance(on bool) {
	s.maintenance.Store(on)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Address,
		Handler:      s.handler,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "address", s.opts.Address, "items", s.items)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeJSON(w, r, http.StatusMethodNotAllowed, crafting.OptimizationResult{Error: MsgMethodNotAllowed})
		return
	}

	var req crafting.OptimizeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.logger.Debug("rejecting optimize request", "request_id", requestIDFrom(r.Context()), "error", err)
		s.writeJSON(w, r, http.StatusBadRequest, crafting.OptimizationResult{Error: MsgInvalidInventory})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.logger.Debug("rejecting optimize request", "request_id", requestIDFrom(r.Context()), "error", err)
		s.writeJSON(w, r, http.StatusBadRequest, crafting.OptimizationResult{Error: MsgInvalidInventory})
		return
	}

	data, err := s.optimizer.Optimize(r.Context(), req.Inventory)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidInventory) {
			s.writeJSON(w, r, http.StatusBadRequest, crafting.OptimizationResult{Error: MsgInvalidInventory})
			return
		}
		s.logger.Error("optimization failed", "request_id", requestIDFrom(r.Context()), "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, crafting.OptimizationResult{Error: MsgInternalError})
		return
	}

	s.writeJSON(w, r, http.StatusOK, crafting.OptimizationResult{Success: true, Data: data})
}

type healthResponse struct {
	Status      string `json:"status"`
	Items       int    `json:"items"`
	Maintenance bool   `json:"maintenance,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthResponse{
		Status:      "ok",
		Items:       s.items,
		Maintenance: s.maintenance.Load(),
	})
}

// writeJSON encodes v with the negotiated content encoding.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")

	if !s.opts.Compression {
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			s.logger.Warn("failed to write response", "error", err)
		}
		return
	}

	// HTTPCompressor picks br, gzip, or identity from Accept-Encoding and
	// sets the response headers, so it must run before WriteHeader.
	cw := brotli.HTTPCompressor(w, r)
	w.WriteHeader(status)
	if err := json.NewEncoder(cw).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
	if err := cw.Close(); err != nil {
		s.logger.Warn("failed to flush compressed response", "error", err)
	}
}
