// Package main is the entry point for the parking occupancy prediction API.
//
// It loads configuration, reads the facility registry and enforcement
// patterns once, wires the weather and holiday providers into the prediction
// engine, and serves the HTTP API until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"

	"parkingpass/internal/api/handlers"
	"parkingpass/internal/config"
	"parkingpass/internal/core"
	"parkingpass/internal/db"
	"parkingpass/internal/external"
	"parkingpass/internal/forecasts"
	"parkingpass/internal/lots"
	"parkingpass/internal/patterns"
	"parkingpass/internal/prediction"
	"parkingpass/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(nil)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("parkingpass API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"reference_source", cfg.Reference.Source,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv, err := buildServer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return runHTTPServer(srv, cfg, logger)
}

// buildServer loads reference data and wires every component into a server
// with its routes mounted.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*core.Server, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	lotSrc, patSrc, err := referenceSources(ctx, cfg, srv)
	if err != nil {
		return nil, err
	}

	registry, err := lots.Load(ctx, lotSrc)
	if err != nil {
		return nil, fmt.Errorf("loading parking lots: %w", err)
	}
	if registry.Len() == 0 {
		logger.Warn("no parking lots found; every facility will score neutral")
	}
	store, err := patterns.Load(ctx, patSrc)
	if err != nil {
		return nil, fmt.Errorf("loading enforcement patterns: %w", err)
	}
	if !store.Loaded() {
		logger.Warn("no enforcement patterns found; scoring with neutral weights")
	}
	logger.Info("reference data loaded",
		"parking_lots", registry.Len(),
		"located", len(registry.Located()),
		"violations", store.TotalCount(),
	)

	metrics, err := newMetrics(ctx, cfg, srv, logger)
	if err != nil {
		return nil, err
	}

	kma := external.NewKMAClient(external.KMAClientConfig{
		BaseURL:   cfg.Feeds.KMABaseURL,
		APIKey:    cfg.Feeds.KMAAPIKey,
		NumOfRows: cfg.Feeds.NumOfRows,
		Timeout:   cfg.Feeds.Timeout,
	})
	holidayFeed := external.NewHolidayClient(external.HolidayClientConfig{
		BaseURL: cfg.Feeds.HolidayBaseURL,
		APIKey:  cfg.Feeds.HolidayAPIKey,
		Timeout: cfg.Feeds.Timeout,
	})

	if !cfg.Feeds.KMAAPIKey.Usable(external.KMAKeyPlaceholder) {
		logger.Warn("weather feed key not configured; serving default weather")
	}
	if !cfg.Feeds.HolidayAPIKey.Usable(external.HolidayKeyPlaceholder) {
		logger.Warn("holiday feed key not configured; using weekend check only")
	}

	weather := forecasts.NewWeatherProvider(kma, forecasts.WeatherConfig{
		Lat: cfg.Feeds.RefLat,
		Lon: cfg.Feeds.RefLon,
		TTL: cfg.Prediction.WeatherTTL,
	}, nil, metrics, logger)
	holidays := forecasts.NewHolidayProvider(holidayFeed, nil, metrics, logger)

	proximity := prediction.NewProximityScorer(prediction.CheonanHotspots).WithCounts(store.DongCounts())
	engine := prediction.NewEngine(prediction.Dependencies{
		Lots:      registry,
		Patterns:  store,
		Proximity: proximity,
		Weather:   weather,
		Holidays:  holidays,
		Metrics:   metrics,
	}, prediction.Config{LiveWobble: cfg.Prediction.LiveWobble}, logger)

	parkingHandler := handlers.NewParkingHandler(registry, logger)
	predictionHandler := handlers.NewPredictionHandler(engine, srv.Validator, handlers.HorizonLimits{
		Default: cfg.Prediction.DefaultHorizon,
		Max:     cfg.Prediction.MaxHorizon,
	}, logger)
	conditionsHandler := handlers.NewConditionsHandler(weather, proximity, srv.Validator, nil, logger)
	patternHandler := handlers.NewPatternHandler(store, prediction.Weights(), logger)

	srv.HealthProbes = append(srv.HealthProbes, handlers.NewReferenceProbe(registry))
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { r.Route("/parking-lots", parkingHandler.RegisterRoutes) },
		func(r chi.Router) { r.Route("/predictions", predictionHandler.RegisterRoutes) },
		func(r chi.Router) { r.Route("/patterns", patternHandler.RegisterRoutes) },
		conditionsHandler.RegisterRoutes,
	)

	srv.MountRoutes()
	return srv, nil
}

// referenceSources selects the file or postgres sources. A postgres pool is
// registered for health checks and closed on shutdown.
func referenceSources(ctx context.Context, cfg *config.Config, srv *core.Server) (lots.Source, patterns.Source, error) {
	switch cfg.Reference.Source {
	case config.SourcePostgres:
		pool, err := db.Connect(ctx, cfg.Reference.DatabaseURL.Unmask())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		srv.HealthProbes = append(srv.HealthProbes, db.NewHealthProbe(pool))
		srv.Closers = append(srv.Closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		return db.NewLotRepository(pool), db.NewPatternRepository(pool), nil
	default:
		return lots.FileSource{Path: cfg.Reference.ParkingLotsPath},
			patterns.FileSource{Path: cfg.Reference.PatternsPath},
			nil
	}
}

// newMetrics combines the enabled backends. Prometheus is scraped from
// /metrics; CloudWatch needs AWS credentials from the default chain.
func newMetrics(ctx context.Context, cfg *config.Config, srv *core.Server, logger *slog.Logger) (telemetry.Metrics, error) {
	var backends telemetry.Multi

	if cfg.Observability.EnablePrometheus {
		prom := telemetry.NewPrometheusMetrics()
		srv.MetricsHandler = prom.Handler()
		backends = append(backends, prom)
	}

	if cfg.Observability.EnableCloudWatch {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Observability.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		backends = append(backends, telemetry.NewCloudWatchMetrics(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Observability.MetricNamespace,
			logger,
		))
	}

	switch len(backends) {
	case 0:
		return telemetry.NoopMetrics{}, nil
	case 1:
		return backends[0], nil
	default:
		return backends, nil
	}
}

// runHTTPServer serves until a shutdown signal or a listener error, then
// drains in-flight requests within the configured shutdown timeout.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a JSON logger at the given level; unknown levels mean
// info.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
