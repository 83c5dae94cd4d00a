package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/yashu1412/Flight-Booking/config"
	"github.com/yashu1412/Flight-Booking/internal/kafka"
	"github.com/yashu1412/Flight-Booking/internal/logger"
	"github.com/yashu1412/Flight-Booking/internal/notify"
	"github.com/yashu1412/Flight-Booking/internal/repository"
	"github.com/yashu1412/Flight-Booking/internal/service/pricing"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Dir, "worker", cfg.Log.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.Database)
	if err != nil {
		zlog.Fatal("Connect postgres", zap.Error(err))
	}
	defer pool.Close()

	engine := pricing.NewEngine(repository.NewAttemptRepository(pool, zlog), pricing.Config{
		AttemptThreshold: cfg.Surge.AttemptThreshold,
		Window:           cfg.Surge.Window(),
		ResetWindow:      cfg.Surge.ResetWindow(),
		Percentage:       cfg.Surge.Percentage,
	}, zlog)

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog)
		defer consumer.Close()

		sender := notify.NewSender(notify.NewLogTransport(zlog), zlog)
		go func() {
			if err := consumer.ConsumeBookingEvents(ctx, sender.Send); err != nil {
				zlog.Error("Notifications consumer stopped", zap.Error(err))
			}
		}()
	}

	sweep := time.NewTicker(time.Duration(cfg.Worker.CleanupSweepMinutes) * time.Minute)
	defer sweep.Stop()

	zlog.Info("Worker started", zap.Int("cleanup_sweep_minutes", cfg.Worker.CleanupSweepMinutes))
	for {
		select {
		case <-sweep.C:
			if _, err := engine.CleanupExpiredAttempts(ctx); err != nil {
				zlog.Error("Attempt cleanup failed", zap.Error(err))
			}
		case <-ctx.Done():
			zlog.Info("Worker shutting down")
			return
		}
	}
}
