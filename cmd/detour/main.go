package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rally-detour/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/rally-detour/internal/adapter/kafka"
	"github.com/couchcryptid/rally-detour/internal/config"
	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/feedback"
	"github.com/couchcryptid/rally-detour/internal/observability"
	"github.com/couchcryptid/rally-detour/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	vocab := domain.DefaultVocabulary()
	if cfg.VocabularyPath != "" {
		vocab, err = domain.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			logger.Error("failed to load vocabulary", "path", cfg.VocabularyPath, "error", err)
			os.Exit(1)
		}
	}

	// Feedback events are feature-flagged via KAFKA_ENABLED.
	var storeOpts []feedback.Option
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaFeedbackTopic, metrics, logger)
		storeOpts = append(storeOpts, feedback.WithPublisher(writer))
		logger.Info("feedback events enabled", "topic", cfg.KafkaFeedbackTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("feedback events disabled")
	}

	store := feedback.NewStore(cfg.FeedbackPath, logger, storeOpts...)
	p := pipeline.New(pipeline.Paths{
		Events:     cfg.EventsPath,
		Diversions: cfg.DiversionsPath,
		Routes:     cfg.RoutesPath,
		ContextDir: cfg.ContextDir,
	}, store, vocab, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A failed warm-up is retried by every readiness probe and request.
	if _, err := p.Snapshot(ctx); err != nil {
		logger.Warn("initial data load failed", "error", err)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
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
}
