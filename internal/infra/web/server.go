package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"travel-itinerary-api/internal/infra/logging"
	"travel-itinerary-api/internal/infra/metrics"
	"travel-itinerary-api/internal/usecase"
)

// Server exposes the job API: initiate a generation job, poll its status.
type Server struct {
	jobUC  *usecase.JobUseCase
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(jobUC *usecase.JobUseCase, port int, logger *zerolog.Logger) *Server {
	s := &Server{jobUC: jobUC, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1/itineraries", func(r chi.Router) {
		r.Post("/", s.handleStart)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// logRequests emits one structured line per request and feeds the HTTP
// metrics. Route patterns keep the metric cardinality bounded.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := r.Context()
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = logging.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(ww, r.WithContext(ctx))

		route := chi.RouteContext(ctx).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		elapsed := time.Since(start)
		metrics.ObserveHTTPRequest(route, r.Method, ww.Status(), float64(elapsed.Milliseconds()))
		logging.With(ctx, s.log).Info().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Dur("duration", elapsed).
			Msg("request")
	})
}
