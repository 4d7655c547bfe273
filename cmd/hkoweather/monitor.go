package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v2"

	"github.com/couchcryptid/hko-weather-e2e/internal/adapter/hko"
	httpadapter "github.com/couchcryptid/hko-weather-e2e/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hko-weather-e2e/internal/adapter/kafka"
	"github.com/couchcryptid/hko-weather-e2e/internal/config"
	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
	"github.com/couchcryptid/hko-weather-e2e/internal/monitor"
	"github.com/couchcryptid/hko-weather-e2e/internal/observability"
)

var monitorCommand = &cli.Command{
	Name:  "monitor",
	Usage: "Run the periodic humidity check with health, readiness, and metrics endpoints",
	Action: func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return runMonitor(c.Context, cfg)
	},
}

func runMonitor(parent context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	client := hko.NewClient(cfg, logger, metrics)
	defer client.Close()
	source := hko.NewCachedForecast(client, cfg.ForecastCacheTTL, clock, metrics)

	// Reports go to Kafka when enabled (KAFKA_ENABLED), otherwise to the log.
	var publisher monitor.ReportPublisher = monitor.NewLogPublisher(logger)
	var writer *kafkaadapter.ReportWriter
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewReportWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReportTopic)
	} else {
		logger.Info("kafka report publishing disabled")
	}

	mon := monitor.New(source, publisher, monitor.Config{
		Interval: cfg.MonitorInterval,
		Offset:   cfg.MonitorDayOffset,
		Bounds:   domain.Bounds{Min: cfg.HumidityExpectedMin, Max: cfg.HumidityExpectedMax},
	}, clock, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, mon, mon, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start humidity monitor.
	go func() {
		if err := mon.Run(ctx); err != nil {
			logger.Error("monitor error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
