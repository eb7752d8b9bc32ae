package main

// @title Route Microservice API
// @version 1.0.0
// @description Микросервис приёма и нормализации маршрутов (Route Spec v1.0). Принимает RAW GeoJSON маршруты (Feature/LineString, координаты строго [lon, lat]) от мобильных клиентов, валидирует контракт, нормализует (ресемплинг с равным шагом, дистанции, азимуты, bbox) и публикует NORMALIZED документы downstream-консьюмеру boat-ride.
// @description
// @description Основные возможности:
// @description - Валидация RAW маршрута по контракту v1.0 (версия, форма документа, координаты WGS84)
// @description - Нормализация: ресемплинг, дистанции, азимуты, bbox, отпечаток исходного документа
// @description - Хранение нормализованных маршрутов и выдача по ID
// @description - Публикация NORMALIZED документов в Redis Stream
// @description - Статистика по сохранённым маршрутам

// @contact.name API Support
// @contact.email support@route-microservice.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/route-microservice/docs"
	"github.com/route-microservice/internal/config"
	httpDelivery "github.com/route-microservice/internal/delivery/http"
	"github.com/route-microservice/internal/delivery/http/handler"
	"github.com/route-microservice/internal/pkg/logger"
	"github.com/route-microservice/internal/repository/cache"
	"github.com/route-microservice/internal/repository/postgres"
	redisRepo "github.com/route-microservice/internal/repository/redis"
	"github.com/route-microservice/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Route Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

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

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	routeRepo := postgres.NewRouteRepository(db, log)
	statsRepo := postgres.NewStatsRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
	normalizer := usecase.NewNormalizer(cfg.Route)

	routeUC := usecase.NewRouteUseCase(
		normalizer,
		routeRepo,
		cacheRepo,
		streamRepo,
		log,
		cfg.Cache.RouteCacheTTL,
	)

	statsUC := usecase.NewStatsUseCase(
		statsRepo,
		cacheRepo,
		log,
		cfg.Cache.StatsCacheTTL,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	routeHandler := handler.NewRouteHandler(routeUC, log)
	statsHandler := handler.NewStatsHandler(statsUC, log)

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		routeHandler,
		statsHandler,
	)

	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
