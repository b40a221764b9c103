package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/clients"
	"github.com/spacesedan/commentscope/internal/logging"
	"github.com/spacesedan/commentscope/internal/monitoring"
	"github.com/spacesedan/commentscope/internal/processing"
	"github.com/spacesedan/commentscope/internal/sentiment"
	"github.com/spacesedan/commentscope/internal/server"
	topicgeneration "github.com/spacesedan/commentscope/internal/topic_generation"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

type classifier interface {
	sentiment.Classifier
	monitoring.HealthChecker
}

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		logging.InitLogger("info")
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.Log.Level)
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	youtube, err := clients.NewYouTubeClient(ctx, cfg.YouTube)
	if err != nil {
		slog.Error("[Main] Failed to create YouTube client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var backend classifier
	switch cfg.Sentiment.Backend {
	case config.SentimentBackendVader:
		backend = sentiment.NewVaderClassifier()
	default:
		backend = clients.NewHuggingFaceClient(ctx, cfg.Sentiment)
	}

	var labeler topicgeneration.Labeler
	if openAI := clients.NewOpenAIClient(cfg.OpenAI); openAI != nil {
		labeler = topicgeneration.NewOpenAILabeler(openAI)
	}

	metrics := monitoring.NewMetrics()
	health := monitoring.NewClassifierHealth(backend, metrics)
	go health.Monitor(ctx)

	analyzer := processing.NewAnalyzer(
		processing.NewCommentFetcher(youtube, cfg.YouTube.PageSize),
		sentiment.NewAnnotator(backend, cfg.Sentiment.MaxTokens),
		topicgeneration.NewExtractor(cfg.Topics, topicgeneration.NewNMFModel, labeler),
		metrics,
		cfg.YouTube.MaxComments,
		cfg.Topics.NumTopics,
	)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      server.New(cfg.HTTP, analyzer, backend.Name(), health, metrics).Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("[Main] Dashboard listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env),
			slog.String("sentiment_backend", backend.Name()),
			slog.Bool("topic_labels", labeler != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Graceful shutdown failed", slog.String("error", err.Error()))
	}
	slog.Info("[Main] Shutdown complete")
}
