// Package metrics exposes the process's Prometheus registry over HTTP, the
// same role the teacher's internal/web.Server plays for the conntrack
// exporter — only the registry's contents changed, from conntrack gauges to
// the tracker/reporter series this daemon publishes.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"netconnd/internal/logging"
)

// Server exposes Prometheus metrics via HTTP.
type Server struct {
	Logger *logging.Logger

	Registry          *prometheus.Registry
	TelemetryPath     string
	ListenAddrs       []string
	MaxRequests       int
	DisableExpMetrics bool
}

// Start launches HTTP servers for all configured listen addresses. It blocks
// until ctx is cancelled, then attempts a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	if s.Registry == nil {
		s.Registry = prometheus.NewRegistry()
	}
	if s.TelemetryPath == "" {
		s.TelemetryPath = "/metrics"
	}

	handlerOpts := promhttp.HandlerOpts{}
	if s.MaxRequests > 0 {
		handlerOpts.MaxRequestsInFlight = s.MaxRequests
	}

	baseHandler := promhttp.HandlerFor(s.Registry, handlerOpts)
	var metricsHandler http.Handler = baseHandler
	if !s.DisableExpMetrics {
		metricsHandler = promhttp.InstrumentMetricHandler(s.Registry, baseHandler)
	}

	mux := http.NewServeMux()
	mux.Handle(s.TelemetryPath, metricsHandler)

	errCh := make(chan error, len(s.ListenAddrs))
	servers := make([]*http.Server, 0, len(s.ListenAddrs))

	for _, addr := range s.ListenAddrs {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		servers = append(servers, srv)

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}

		if s.Logger != nil {
			s.Logger.Info("metrics server started", "addr", addr, "path", s.TelemetryPath)
		}

		go func(srv *http.Server, ln net.Listener) {
			err := srv.Serve(ln)
			if err == nil || err == http.ErrServerClosed {
				errCh <- nil
				return
			}
			errCh <- err
		}(srv, ln)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}

	return nil
}
