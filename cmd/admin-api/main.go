package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sagipero/admin-console/internal/config"
	"github.com/sagipero/admin-console/internal/console/api"
	"github.com/sagipero/admin-console/internal/console/api/handler"
	"github.com/sagipero/admin-console/internal/console/session"
	"github.com/sagipero/admin-console/internal/health"
	"github.com/sagipero/admin-console/internal/logging"
	"github.com/sagipero/admin-console/internal/metrics"
	"github.com/sagipero/admin-console/internal/report"
	"github.com/sagipero/admin-console/internal/sagipero"
	"github.com/sagipero/admin-console/internal/weather"
)

const (
	sweepInterval = 10 * time.Minute
	callSlack     = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	settings, err := config.LoadSettings()
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable settings file")
		settings = &config.Settings{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := handler.NewBackend(settings, cfg.APIURL, !cfg.DevMode,
		sagipero.WithTimeout(cfg.RequestTimeout),
		sagipero.WithRetry(cfg.MaxRetries, cfg.RetryDelay),
		sagipero.WithLogger(logger),
	)

	sessions := session.NewStore(session.Options{
		SocketURL: cfg.SocketURLFor,
		TTL:       cfg.SessionTTL,
		Logger:    logger,
	})
	defer sessions.CloseAll()
	go sessions.RunSweeper(ctx, sweepInterval)

	monitor := health.NewMonitor(backend, cfg.HealthInterval, logger)
	go monitor.RunLoop(ctx)

	archiver := report.NewArchiver(report.ArchiveConfig{
		Bucket:    cfg.ReportBucket,
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, logger)

	srv := api.NewServer(logger, cfg.CORSOrigins, api.Deps{
		Backend:    backend,
		Sessions:   sessions,
		Health:     monitor,
		Forecaster: weather.NewClient("", logger),
		Archiver:   archiver,
		Location:   weather.Manila(),
		CallBudget: sagipero.CallBudget(cfg.RequestTimeout, cfg.MaxRetries, cfg.RetryDelay) + callSlack,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Str("api", backend.APIBase()).Msg("starting admin console server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsListenAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsListenAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	// Live websocket streams are hijacked and not tracked by Shutdown.
	sessions.CloseAll()
	httpServer.Shutdown(shutdownCtx)
	if metricsServer != nil {
		metricsServer.Shutdown(shutdownCtx)
	}
}
