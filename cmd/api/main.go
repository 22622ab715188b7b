package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/api"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/auth"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/cache"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/config"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/database"
	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/notify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, product cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	productCache := cache.NewProductCache(redisClient, cfg.Redis.CacheTTL)

	var dispatcher notify.Dispatcher
	if len(cfg.Kafka.Brokers) > 0 {
		dispatcher, err = notify.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.OrderEventsTopic, logger)
		if err != nil {
			logger.Fatal("create kafka dispatcher", zap.Error(err))
		}
	} else {
		dispatcher = notify.NewLogDispatcher(logger)
	}
	defer dispatcher.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewServer(db, logger, tokens, productCache, dispatcher).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
