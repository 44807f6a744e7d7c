package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kjstillabower/meteo-gateway/internal/client"
	"github.com/kjstillabower/meteo-gateway/internal/config"
	"github.com/kjstillabower/meteo-gateway/internal/gateway"
	httphandler "github.com/kjstillabower/meteo-gateway/internal/http"
	"github.com/kjstillabower/meteo-gateway/internal/lifecycle"
	"github.com/kjstillabower/meteo-gateway/internal/observability"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger, err := observability.NewLogger(observability.LoggerOptions{Service: "meteo-gateway", Version: version})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if !cfg.HasAPIKey() {
		logger.Warn("weather API key not configured; /weather and /forecast will fail until it is set")
	}

	weatherClient, err := client.NewOpenWeatherClient(cfg.WeatherAPIKey, client.Options{
		BaseURL: cfg.WeatherAPIURL,
		GeoURL:  cfg.GeoAPIURL,
		Units:   cfg.Units,
		Lang:    cfg.Lang,
		Timeout: cfg.WeatherAPITimeout,
	})
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}
	gw := gateway.New(weatherClient, gateway.Settings{
		CredentialConfigured: cfg.HasAPIKey(),
		Lang:                 cfg.Lang,
		Location:             cfg.Location,
	})

	handler := httphandler.NewHandler(gw, httphandler.HealthConfig{
		CredentialConfigured: cfg.HasAPIKey(),
		StartTime:            time.Now(),
		Version:              version,
	}, logger)
	static := httphandler.NewStaticHandler(cfg.StaticDir)
	router := httphandler.NewRouter(handler, static, logger, cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("static_dir", cfg.StaticDir),
			zap.Duration("upstream_timeout", cfg.WeatherAPITimeout))
		lifecycle.SetPhase(lifecycle.PhaseServing)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("graceful shutdown triggered")
		lifecycle.SetPhase(lifecycle.PhaseDraining)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}

		logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
		waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
		defer waitCancel()
		if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
			logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
		}
		logger.Info("requests drained", zap.Int64("peak_in_flight", httphandler.InFlight().Peak))
		return nil
	})

	runErr := g.Wait()
	if runErr != nil {
		logger.Error("server", zap.Error(runErr))
	}
	logger.Info("shutdown complete")

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
