package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-generator/internal/adapters/http"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-generator/internal/app"
	"github.com/jsamuelsen/quote-generator/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quote widget over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telProvider, err := telemetry.New(ctx, telemetry.ConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	source, err := newQuoteSource(cfg, logger)
	if err != nil {
		return err
	}

	registry := app.NewWidgetRegistry(app.RegistryConfig{
		Widget: app.WidgetConfig{
			Source:        source,
			ReselectDelay: cfg.Widget.ReselectDelay,
			Metrics:       app.NewMetrics(prometheus.DefaultRegisterer),
			Logger:        logger,
		},
		SessionTTL:    cfg.Widget.SessionTTL,
		SweepInterval: cfg.Widget.SweepInterval,
		MaxSessions:   cfg.Widget.MaxSessions,
	})

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(source); err != nil {
		return fmt.Errorf("registering quote source health check: %w", err)
	}

	if err := healthRegistry.Register(registry); err != nil {
		return fmt.Errorf("registering widget registry health check: %w", err)
	}

	widgetHandler, err := handlers.NewWidgetHandler(handlers.WidgetHandlerConfig{
		Registry:     registry,
		CookieName:   cfg.Widget.CookieName,
		Title:        cfg.Widget.Title,
		SessionTTL:   cfg.Widget.SessionTTL,
		SecureCookie: cfg.App.Environment == "prod",
	})
	if err != nil {
		return fmt.Errorf("creating widget handler: %w", err)
	}

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		ServiceName:   cfg.App.Name,
		HealthHandler: handlers.NewHealthHandler(healthRegistry, buildInfo, nil),
		WidgetHandler: widgetHandler,
		Timeout:       http.DefaultRequestTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx)
	})

	g.Go(func() error {
		return registry.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
