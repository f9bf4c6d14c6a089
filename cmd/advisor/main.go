// Command advisor runs the speed-advisory service: it keeps the event and
// weather cache fresh, serves the connector's getters over HTTP, and
// optionally publishes important events seen by the live watch to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/landigf/MinervaS/internal/adapter/httpserver"
	kafkaadapter "github.com/landigf/MinervaS/internal/adapter/kafka"
	"github.com/landigf/MinervaS/internal/adapter/opendatahub"
	"github.com/landigf/MinervaS/internal/config"
	"github.com/landigf/MinervaS/internal/connector"
	"github.com/landigf/MinervaS/internal/domain"
	"github.com/landigf/MinervaS/internal/fuzzy"
	"github.com/landigf/MinervaS/internal/observability"
	"github.com/landigf/MinervaS/internal/risk"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	engine, err := loadEngine(cfg, logger)
	if err != nil {
		logger.Error("failed to load rule configuration", "error", err)
		os.Exit(1)
	}

	traffic := opendatahub.NewTrafficClient(cfg.ODHMobilityBase, cfg.ODHAPIKey, cfg.ODHTimeout, logger)
	weather := opendatahub.NewWeatherClient(cfg.ODHMobilityBase, cfg.ODHTourismBase, cfg.WeatherRadiusM, cfg.ODHTimeout, logger)
	position := func() domain.Position {
		return domain.Position{Lat: cfg.PositionLat, Lon: cfg.PositionLon}
	}

	conn, err := connector.New(traffic, weather, position, connector.Options{
		RouteSegment:  cfg.RouteSegment,
		TTL:           cfg.CacheTTL,
		DefaultWindow: cfg.DefaultWindow,
		Engine:        engine,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		logger.Error("failed to build connector", "error", err)
		os.Exit(1)
	}

	srv := httpserver.NewServer(cfg.HTTPAddr, conn, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	onEvent := func(e domain.Event) {
		logger.Info("important event",
			"category", e.Category,
			"description", e.Description,
			"severity", e.Severity,
		)
	}

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
		logOnly := onEvent
		onEvent = func(e domain.Event) {
			logOnly(e)
			publisher.Publish(ctx, e)
		}
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		err := conn.Watch(ctx, connector.WatchConfig{
			WithinKm:     cfg.WatchRadiusKm,
			PollInterval: cfg.PollInterval,
			OnEvent:      onEvent,
		})
		if err != nil {
			logger.Error("live watch error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadEngine builds the fuzzy engine from RULES_PATH, or from the embedded
// default rule set when no path is configured.
func loadEngine(cfg *config.Config, logger *slog.Logger) (*fuzzy.Engine, error) {
	if cfg.RulesPath == "" {
		logger.Info("using embedded default rule set")
		return risk.NewEngine()
	}
	logger.Info("loading rule configuration", "path", cfg.RulesPath)
	return fuzzy.LoadFile(cfg.RulesPath)
}
