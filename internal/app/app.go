package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nodedge/nodedge/internal/config"
	"github.com/nodedge/nodedge/internal/ctxlog"
	"github.com/nodedge/nodedge/internal/metrics"
	"github.com/nodedge/nodedge/internal/notify"
	"github.com/nodedge/nodedge/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx      context.Context
	outW     io.Writer
	logger   *slog.Logger
	config   config.Config
	registry *registry.Registry

	promRegistry *prometheus.Registry
	metrics      *metrics.Recorder

	sink    notify.Sink
	closers []io.Closer

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics. With no modules the core block kinds are registered.
func NewApp(ctx context.Context, outW io.Writer, cfg config.Config, modules ...registry.Module) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	if err := reg.Load(ctx, modules...); err != nil {
		return nil, err
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", len(reg.Kinds()))

	promRegistry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(promRegistry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	a := &App{
		ctx:          ctx,
		outW:         outW,
		logger:       logger,
		config:       cfg,
		registry:     reg,
		promRegistry: promRegistry,
		metrics:      recorder,
	}

	sinks := []notify.Sink{&notify.LogSink{Logger: logger, Level: slog.LevelDebug}}
	if cfg.NotifyURL != "" {
		sio, err := notify.DialSocketIO(ctx, notify.SocketIOConfig{URL: cfg.NotifyURL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect notification sink: %w", err)
		}
		sinks = append(sinks, sio)
		a.closers = append(a.closers, sio)
	}
	a.sink = notify.Multi(sinks...)

	return a, nil
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config {
	return a.config
}

// Metrics returns the Prometheus registry holding the app's collectors.
func (a *App) Metrics() *prometheus.Registry {
	return a.promRegistry
}

// Logger returns the app's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Close stops the HTTP server and disconnects the notification sinks.
func (a *App) Close() error {
	errs := []error{a.closeHealthCheckServer()}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
