package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// requestID reuses an inbound X-Request-ID or assigns a new one, and picks
// up any W3C trace context sent by the caller.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx = context.WithValue(ctx, requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.logger.Info("http request",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed)
		if s.recorder != nil {
			s.recorder.RecordHTTPRequest(routeLabel(r.URL.Path, s.opts.MetricsPath), rec.status, elapsed)
		}
	})
}

// routeLabel keeps metric cardinality bounded to the known routes.
func routeLabel(path, metricsPath string) string {
	switch path {
	case RouteOptimize, RouteHealth:
		return path
	}
	if metricsPath != "" && path == metricsPath {
		return path
	}
	return "other"
}

// apiOnly applies maintenance mode and rate limiting to API routes.
func (s *Server) apiOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.maintenance.Load() {
			w.Header().Set("Retry-After", "60")
			s.writeJSON(w, r, http.StatusServiceUnavailable, crafting.OptimizationResult{Error: MsgMaintenance})
			return
		}
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.writeJSON(w, r, http.StatusTooManyRequests, crafting.OptimizationResult{Error: MsgRateLimited})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanics turns a handler panic into the generic 500 response.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.logger.Error("panic serving request",
					"request_id", requestIDFrom(r.Context()),
					"path", r.URL.Path,
					"panic", v)
				s.writeJSON(w, r, http.StatusInternalServerError, crafting.OptimizationResult{Error: MsgInternalError})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
