package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/route-microservice/internal/config"
	"github.com/route-microservice/internal/pkg/logger"
	"github.com/route-microservice/internal/repository/cache"
	"github.com/route-microservice/internal/repository/postgres"
	redisRepo "github.com/route-microservice/internal/repository/redis"
	"github.com/route-microservice/internal/usecase"
	"github.com/route-microservice/internal/worker"
	"github.com/route-microservice/internal/worker/route"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Route Normalize Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Float64("default_spacing_m", cfg.Route.DefaultSpacingM),
		zap.Int("max_points", cfg.Route.MaxPoints))

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	routeRepo := postgres.NewRouteRepository(db, log)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 6. Initialize normalizer
	normalizer := usecase.NewNormalizer(cfg.Route)

	// 7. Initialize workers
	normalizeWorker := route.NewNormalizeWorker(
		streamRepo,
		routeRepo,
		normalizer,
		cfg.Worker.ConsumerGroup,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(normalizeWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	log.Info("Workers started successfully")

	// 10. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down workers gracefully...")
	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}

	log.Info("Workers stopped successfully")
}
