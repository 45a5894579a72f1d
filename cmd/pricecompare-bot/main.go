package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pricecompare-bot/internal/bot"
	"pricecompare-bot/internal/config"
	"pricecompare-bot/internal/session"
	"pricecompare-bot/internal/storage"
	"pricecompare-bot/pkg/logger"
	"pricecompare-bot/pkg/redis"
)

// ENTRY POINT

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	var (
		redisClient *redis.Client
		sessions    session.Store
		limiter     bot.RateLimiter
		recorder    storage.Recorder
	)

	if cfg.StateBackend == config.StateBackendRedis {
		redisClient, err = redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		sessions = session.NewRedisStore(redisClient, cfg.Calculator.DefaultRows)
		limiter = redisClient
	} else {
		zapLogger.Warn("Using in-memory sessions, state is lost on restart")
		sessions = session.NewMemoryStore(cfg.Calculator.DefaultRows)
	}

	if cfg.Database.Enabled() {
		pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, redisClient, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
		}
		defer pgStorage.Close()
		recorder = pgStorage
	} else {
		zapLogger.Info("Statistics database not configured")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		zapLogger.Fatal("Failed to create Telegram client", zap.Error(err))
	}
	api.Debug = cfg.BotDebug
	zapLogger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	tgBot := bot.New(api, sessions, recorder, limiter, zapLogger, cfg)

	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	zapLogger.Info("Bot shutdown gracefully")
}
