package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// Handler returns the mux serving /health and /metrics.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(a.promRegistry, promhttp.HandlerOpts{Registry: a.promRegistry}))
	return mux
}

// StartServer starts the health and metrics server in the background when
// an HTTP port is configured. It returns the address it listens on, or ""
// when the server is disabled.
func (a *App) StartServer() (string, error) {
	a.logger.Debug("Configuring health check server.")
	if a.config.HTTPPort <= 0 {
		a.logger.Debug("Health check server not started: disabled")
		return "", nil
	}
	if a.httpServer != nil {
		return a.httpServer.Addr, nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.HTTPPort))
	if err != nil {
		return "", fmt.Errorf("failed to listen on port %d: %w", a.config.HTTPPort, err)
	}
	a.httpServer = &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("Health check server starting", "address", a.httpServer.Addr)
		// Serve returns http.ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return a.httpServer.Addr, nil
}

func (a *App) closeHealthCheckServer() error {
	if a.httpServer == nil {
		a.logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), 5*time.Second)
	defer cancel()

	a.logger.Info("Shutting down health check server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil
	a.logger.Debug("Health check server shut down gracefully.")
	return nil
}
