package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/creatorstack/socialgate/internal/api"
	"github.com/creatorstack/socialgate/internal/config"
	"github.com/creatorstack/socialgate/internal/connect"
	"github.com/creatorstack/socialgate/internal/crypto"
	"github.com/creatorstack/socialgate/internal/gateway"
	"github.com/creatorstack/socialgate/internal/session"
	"github.com/creatorstack/socialgate/internal/store"
	"github.com/creatorstack/socialgate/internal/worker"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var enc *crypto.Encryptor
	if cfg.Security.EncryptionKey != "" {
		enc, err = crypto.NewEncryptor(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal("failed to initialize encryptor", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session storage: Postgres when configured, then Redis, else memory.
	var sessions session.Store = session.NewMemoryStore()
	var queries store.Querier
	switch {
	case cfg.Database.URL != "":
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		sessions = session.NewPostgresStore(pool, enc)
		queries = store.New(pool)
	case cfg.Database.RedisURL != "":
		opt, err := redis.ParseURL(cfg.Database.RedisURL)
		if err != nil {
			logger.Fatal("invalid redis URL", zap.Error(err))
		}
		sessions = session.NewRedisStore(redis.NewClient(opt))
	}

	gw := gateway.New(cfg.Backend.BaseURL, logger)
	tracker := connect.NewTracker(0)
	go tracker.Run(ctx)

	router := gin.Default()
	h := api.RegisterRoutes(router, cfg, gw, sessions, tracker, queries, logger)

	switch cfg.Server.Mode {
	case "worker":
		if queries == nil {
			logger.Fatal("worker mode requires DATABASE_URL")
		}
		logger.Info("starting in worker-only mode")
		worker.New(queries, h, 5, logger).Start(ctx) // blocks until ctx cancelled
	case "api":
		// API-only: no embedded worker goroutines; scale workers separately.
		logger.Info("starting in api-only mode", zap.String("port", cfg.Server.Port))
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	default:
		// Default: run both API server and worker in the same process.
		if queries != nil {
			go worker.New(queries, h, 5, logger).Start(ctx)
		}
		logger.Info("starting", zap.String("port", cfg.Server.Port))
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}
}
