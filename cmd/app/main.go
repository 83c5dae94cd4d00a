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
	"github.com/yashu1412/Flight-Booking/internal/auth"
	"github.com/yashu1412/Flight-Booking/internal/bootstrap"
	"github.com/yashu1412/Flight-Booking/internal/cache"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/kafka"
	"github.com/yashu1412/Flight-Booking/internal/logger"
	"github.com/yashu1412/Flight-Booking/internal/repository"
	"github.com/yashu1412/Flight-Booking/internal/service/booking"
	"github.com/yashu1412/Flight-Booking/internal/service/flights"
	"github.com/yashu1412/Flight-Booking/internal/service/pricing"
	"github.com/yashu1412/Flight-Booking/internal/service/wallet"
	"go.uber.org/zap"
)

func main() {
	// .env is optional, the real environment wins
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Dir, "app", cfg.Log.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	cacheTTL := time.Duration(cfg.Booking.FlightsCacheTTL) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, cacheTTL)
	defer redisCache.Close()

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer p.Close()
		if err := p.CheckConnection(ctx); err != nil {
			log.Warn("Kafka unreachable, booking events will be dropped until it recovers", zap.Error(err))
		}
		producer = p
	}

	defaultBalance, err := domain.ParseMoney(cfg.Wallet.DefaultBalance)
	if err != nil {
		return err
	}

	txManager := repository.NewTxManager(pool, log)
	flightRepo := repository.NewFlightRepository(pool, log)
	bookingRepo := repository.NewBookingRepository(pool, log)
	walletRepo := repository.NewWalletRepository(pool, log)
	attemptRepo := repository.NewAttemptRepository(pool, log)

	engine := pricing.NewEngine(attemptRepo, pricing.Config{
		AttemptThreshold: cfg.Surge.AttemptThreshold,
		Window:           cfg.Surge.Window(),
		ResetWindow:      cfg.Surge.ResetWindow(),
		Percentage:       cfg.Surge.Percentage,
	}, log)
	if err := engine.Config().Validate(); err != nil {
		return err
	}

	ledger := wallet.NewLedger(walletRepo, txManager, defaultBalance, log)
	flightService := flights.NewFlightService(flightRepo, redisCache, engine, cfg.Booking.DefaultPageSize, log)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		txManager,
		engine,
		ledger,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		log,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithDefaultPageSize(cfg.Booking.DefaultPageSize),
	)

	return bootstrap.Run(ctx, cfg, bootstrap.Services{
		Flights:  flightService,
		Bookings: bookingService,
		Wallet:   ledger,
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Health: map[string]bootstrap.HealthCheck{
			"postgres": pool.Ping,
			"redis":    redisCache.Ping,
		},
	}, log)
}
