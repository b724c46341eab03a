package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rajeev-sr/hackrx/internal/adapters/driven/ai"
	"github.com/rajeev-sr/hackrx/internal/adapters/driven/loader"
	"github.com/rajeev-sr/hackrx/internal/adapters/driven/qdrant"
	memoryqueue "github.com/rajeev-sr/hackrx/internal/adapters/driven/queue/memory"
	redisqueue "github.com/rajeev-sr/hackrx/internal/adapters/driven/queue/redis"
	httpapi "github.com/rajeev-sr/hackrx/internal/adapters/driving/http"
	"github.com/rajeev-sr/hackrx/internal/config"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driving"
	"github.com/rajeev-sr/hackrx/internal/core/services"
	"github.com/rajeev-sr/hackrx/internal/metrics"
	"github.com/rajeev-sr/hackrx/internal/rerankers"
	"github.com/rajeev-sr/hackrx/internal/worker"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// .env is a local development convenience; missing files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		cfg.Mode = flag.Arg(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	logger.Info("hackrx starting", "version", version, "mode", cfg.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// ===== AI services =====
	aiServices, err := ai.NewServices(ai.ServicesConfig{
		APIKey:         cfg.OpenAI.APIKey,
		ChatModel:      cfg.OpenAI.ChatModel,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		BaseURL:        cfg.OpenAI.BaseURL,
	})
	if err != nil {
		logger.Error("ai services", "error", err)
		os.Exit(1)
	}
	defer aiServices.Close()

	// ===== Vector index =====
	index := qdrant.NewIndex(qdrant.Config{
		BaseURL: cfg.Qdrant.URL,
		APIKey:  cfg.Qdrant.APIKey,
		TopK:    cfg.Qdrant.TopK,
		Logger:  logger,
	}, aiServices.Embedding)
	if err := index.HealthCheck(ctx); err != nil {
		logger.Warn("qdrant health check failed", "error", err)
	}

	// ===== Document loader =====
	docLoader := loader.NewHTTPLoader(loader.Config{
		MaxBytes:     cfg.Ingest.MaxBytes,
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		Logger:       logger,
	})

	// ===== Task queue (Redis if configured, in-process otherwise) =====
	var taskQueue driven.TaskQueue
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis connect", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			logger.Error("redis task queue", "error", err)
			os.Exit(1)
		}
		logger.Info("using redis task queue")
	} else {
		taskQueue = memoryqueue.NewQueue(128)
		logger.Info("using in-process task queue")
	}
	defer taskQueue.Close()

	// ===== Reranking scorer =====
	var scorer driven.RelevanceScorer
	switch cfg.Rerank.Scorer {
	case "embedding":
		scorer = rerankers.NewEmbedding(aiServices.Embedding)
	default:
		scorer = rerankers.NewLexical()
	}

	// ===== Metrics =====
	m := metrics.New()

	// ===== Core services =====
	analyzer := services.NewAnalyzer(aiServices.LLM, logger)
	reranker := services.NewReranker(scorer, logger)
	generator := services.NewGenerator(aiServices.LLM, logger)

	pipeline := services.NewDocumentPipeline(services.DocumentPipelineConfig{
		Loader:      docLoader,
		Index:       index,
		Analyzer:    analyzer,
		Reranker:    reranker,
		Generator:   generator,
		SettleDelay: cfg.Ingest.SettleDelay,
		Observer:    m.ObserveStage,
		Logger:      logger,
	})
	interactive := services.NewInteractivePipeline(services.InteractivePipelineConfig{
		Index:     index,
		Analyzer:  analyzer,
		Reranker:  reranker,
		Generator: generator,
		Logger:    logger,
	})
	jobService := services.NewJobService(services.JobServiceConfig{
		Pipeline:    pipeline,
		Interactive: interactive,
		Queue:       taskQueue,
		Logger:      logger,
	})

	switch cfg.Mode {
	case "api":
		runAPI(ctx, cfg, jobService, index, taskQueue, aiServices, m, logger)
	case "worker":
		runWorker(ctx, cfg, taskQueue, pipeline, m, logger)
	case "all":
		go runWorker(ctx, cfg, taskQueue, pipeline, m, logger)
		runAPI(ctx, cfg, jobService, index, taskQueue, aiServices, m, logger)
	default:
		logger.Error("unknown mode", "mode", cfg.Mode)
		os.Exit(1)
	}
}

func runAPI(
	ctx context.Context,
	cfg config.Config,
	jobService driving.JobService,
	index *qdrant.Index,
	taskQueue driven.TaskQueue,
	aiServices *ai.Services,
	m *metrics.Metrics,
	logger *slog.Logger,
) {
	checks := map[string]httpapi.Pinger{
		"index":  httpapi.PingerFunc(index.HealthCheck),
		"queue":  httpapi.PingerFunc(taskQueue.Ping),
		"openai": httpapi.PingerFunc(aiServices.LLM.Ping),
	}

	server := httpapi.NewServer(httpapi.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Version: version,
	}, jobService, checks, m, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func runWorker(
	ctx context.Context,
	cfg config.Config,
	taskQueue driven.TaskQueue,
	pipeline *services.DocumentPipeline,
	m *metrics.Metrics,
	logger *slog.Logger,
) {
	w := worker.New(worker.Config{
		TaskQueue:      taskQueue,
		Runner:         pipeline,
		Observer:       m.ObserveJob,
		Logger:         logger,
		Concurrency:    cfg.Worker.Concurrency,
		DequeueTimeout: cfg.Worker.DequeueTimeout,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("worker start", "error", err)
		os.Exit(1)
	}
	logger.Info("worker started, processing tasks")

	<-ctx.Done()
	w.Stop()
}
