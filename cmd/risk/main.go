package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/cargosense-risk/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cargosense-risk/internal/adapter/kafka"
	"github.com/couchcryptid/cargosense-risk/internal/adapter/llm"
	"github.com/couchcryptid/cargosense-risk/internal/adapter/openmeteo"
	"github.com/couchcryptid/cargosense-risk/internal/adapter/riskmodel"
	"github.com/couchcryptid/cargosense-risk/internal/adapter/tomtom"
	"github.com/couchcryptid/cargosense-risk/internal/config"
	"github.com/couchcryptid/cargosense-risk/internal/domain"
	"github.com/couchcryptid/cargosense-risk/internal/observability"
	"github.com/couchcryptid/cargosense-risk/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	tt := tomtom.NewClient(cfg.TomTomKey, cfg.TomTomTimeout, metrics, logger)
	geocoder := tomtom.NewCachedGeocoder(tt, cfg.GeocodeCacheSize, metrics)
	weather := openmeteo.NewClient(cfg.WeatherTimeout, logger)

	// Learned risk model (optional; fusion falls back to baseline without it).
	var model domain.RiskModel
	if cfg.RiskModelURL != "" {
		model = riskmodel.NewClient(cfg.RiskModelURL, cfg.RiskModelTimeout, logger)
		logger.Info("risk model enabled", "url", cfg.RiskModelURL)
	} else {
		logger.Info("risk model disabled, baseline scoring only")
	}

	// Generative explanations (optional; deterministic fallback without it).
	var explModel domain.ExplanationModel
	if cfg.LLMURL != "" {
		explModel = llm.NewClient(cfg.LLMURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, logger)
		logger.Info("generative explanations enabled", "model", cfg.LLMModel)
	} else {
		logger.Info("generative explanations disabled, deterministic fallback only")
	}

	var notifier pipeline.Notifier
	var kafkaNotifier *kafkaadapter.Notifier
	if cfg.KafkaEnabled {
		kafkaNotifier = kafkaadapter.NewNotifier(cfg, logger)
		notifier = kafkaNotifier
		logger.Info("kafka notifications enabled", "topic", cfg.KafkaNotifyTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka notifications disabled")
	}

	p := pipeline.New(pipeline.Deps{
		Geocoder:         geocoder,
		Router:           tt,
		Weather:          weather,
		Traffic:          tt,
		RiskModel:        model,
		ExplanationModel: explModel,
		Notifier:         notifier,
		Features:         domain.NewFeatureBuilder(nil),
		Logger:           logger,
		Metrics:          metrics,
		Workers:          cfg.Workers,
		WeatherSamples:   cfg.WeatherSamples,
		TrafficSamples:   cfg.TrafficSamples,
		WeatherTimeout:   cfg.WeatherTimeout,
		ExplainTimeout:   cfg.LLMTimeout,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			logger.Error("kafka notifier close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
