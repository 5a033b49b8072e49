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

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/eduscore/internal/analysis"
	"github.com/RishiKendai/eduscore/internal/api"
	"github.com/RishiKendai/eduscore/internal/config"
	"github.com/RishiKendai/eduscore/internal/configs/env"
	"github.com/RishiKendai/eduscore/internal/evaluation"
	"github.com/RishiKendai/eduscore/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/eduscore/internal/infra/redis"
	"github.com/RishiKendai/eduscore/internal/logger"
	"github.com/RishiKendai/eduscore/internal/metrics"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
	"github.com/RishiKendai/eduscore/internal/preprocess"
	"github.com/RishiKendai/eduscore/internal/repository"
	"github.com/RishiKendai/eduscore/internal/stream"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.InitWithFormat(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("Starting EduScore server")

	metrics.InitPrometheus()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := api.StartServer(metricsMux, cfg.MetricsPort, "metrics")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}
	documentsRepo := repository.NewDocumentsRepository(mongoRepo)
	evaluationsRepo := repository.NewEvaluationsRepository(mongoRepo)

	detectors, err := plagiarism.NewRegistry(cfg.Plagiarism())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create plagiarism detectors")
	}

	grammar := analysis.NewLanguageToolClient(cfg.LanguageToolURL, cfg.LanguageToolLanguage, cfg.LanguageToolTimeout)
	statusTracker := evaluation.NewStatusTracker(redisClient)

	evaluationSvc := evaluation.NewService(
		grammar,
		detectors,
		documentsRepo,
		evaluationsRepo,
		statusTracker,
		cfg.EvaluationTimeout,
	)

	workerPool := evaluation.NewWorkerPool(ctx, cfg.MaxConcurrentEvaluations)
	defer workerPool.Close()

	preprocessSvc := preprocess.NewService(documentsRepo, evaluationSvc, detectors)

	// Rebuild the in-memory corpus before accepting traffic
	if _, err := preprocessSvc.WarmCorpus(ctx, cfg.WarmupConcurrency); err != nil {
		log.Fatal().Err(err).Msg("Failed to warm plagiarism corpus")
	}
	for _, tenant := range detectors.Tenants() {
		metrics.CorpusSize.WithLabelValues(tenant).Set(float64(detectors.Get(tenant).Len()))
	}

	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey, cfg.StreamMaxRetries)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		preprocessSvc,
		retryHandler,
		cfg.StreamRetentionDuration,
	)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Redis consumer started")

	reportCache, err := api.NewReportCache(cfg.ReportCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report cache")
	}

	handler := api.NewHandler(
		detectors,
		documentsRepo,
		evaluationsRepo,
		statusTracker,
		workerPool,
		func(documentID string) evaluation.Job {
			return evaluation.NewEvaluationJob(evaluationSvc, documentID)
		},
		reportCache,
	)

	router := api.SetupRoutes(api.RouteConfig{
		JWTSecret:    cfg.JWTSecret,
		JWTIssuer:    cfg.JWTIssuer,
		RateLimitRPS: cfg.RateLimitRPS,
	}, handler)

	srv := api.StartServer(router, cfg.ServerPort, "api")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}

	// Stop consuming before the pool and the stores go away
	cancel()
	<-consumerDone

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
