package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"newera.app/reentry/internal/bootstrap"
	"newera.app/reentry/internal/config"
	"newera.app/reentry/internal/server"
	"newera.app/reentry/pkg/database"
	"newera.app/reentry/pkg/logger"
	"newera.app/reentry/pkg/storage"
	"newera.app/reentry/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "reentry-api")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	if err := validator.Register(); err != nil {
		zapLogger.Fatal("failed to register validators", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database.DSN(), cfg.IsDevelopment())
	if err != nil {
		zapLogger.Fatal("database connection failed", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		zapLogger.Fatal("migration failed", zap.Error(err))
	}
	if cfg.IsDevelopment() {
		if err := bootstrap.SeedAdminUser(db, zapLogger); err != nil {
			zapLogger.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := server.Dependencies{}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("redis unavailable, continuing without it", zap.Error(err))
			rdb.Close()
		} else {
			deps.Redis = rdb
			defer rdb.Close()
		}
	}

	if cfg.MeiliSearchHost != "" {
		deps.Meili = meilisearch.New(meiliURL(cfg.MeiliSearchHost), meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}

	if cfg.CloudinaryURL != "" || cfg.CloudinaryCloudName != "" {
		imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName)
		if err != nil {
			zapLogger.Fatal("failed to initialize cloudinary storage", zap.Error(err))
		}
		deps.Storage = imageStorage
	}

	srv, err := server.NewServer(cfg, db, deps, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build server", zap.Error(err))
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		zapLogger.Fatal("server exited with error", zap.Error(err))
	}
}

func meiliURL(host string) string {
	if strings.HasPrefix(host, "http") {
		return host
	}
	return fmt.Sprintf("http://%s:7700", host)
}
