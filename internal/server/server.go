package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-payments/internal/logging"
)

type Options struct {
	Addr        string
	ServiceName string
	Stats       StatsSource
	// Registry receives the HTTP metrics and is served on /metrics.
	Registry *prometheus.Registry
}

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(opts Options) (*Server, error) {
	handler := NewHandler(opts.ServiceName, opts.Stats)

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := NewHTTPMetrics()
	if err := metrics.Register(registry); err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}).ServeHTTP)

	r.Route("/api/session", func(r chi.Router) {
		r.Get("/stats", handler.SessionStats)
	})

	httpServer := &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}, nil
}

// Serve accepts connections on ln until Shutdown is called, in which case it
// returns nil.
func (s *Server) Serve(ln net.Listener) error {
	logging.Info(context.Background(), "starting HTTP server", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
