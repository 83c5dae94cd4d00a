package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/yashu1412/Flight-Booking/api"
	"github.com/yashu1412/Flight-Booking/config"
	"github.com/yashu1412/Flight-Booking/internal/auth"
	"github.com/yashu1412/Flight-Booking/internal/service/booking"
	"github.com/yashu1412/Flight-Booking/internal/service/flights"
	"go.uber.org/zap"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Wallet   api.WalletUseCase
	Verifier *auth.Verifier
	Health   map[string]HealthCheck
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg *config.Config, svc Services, log *zap.Logger) error {
	router, err := NewRouter(cfg, svc, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := time.Duration(cfg.HTTP.ShutdownSeconds) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		log.Info("Shutting down HTTP server", zap.Duration("timeout", timeout))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, svc Services, log *zap.Logger) (*gin.Engine, error) {
	if err := api.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(api.RequestLogger(log), api.Recovery(log))

	if len(cfg.HTTP.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.HTTP.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler(svc.Health))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFile("/docs/swagger.json", filepath.Join(cfg.HTTP.SwaggerDir, "swagger.json"))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/swagger.json"))))
	}

	required := svc.Verifier.Required()

	apiGroup := router.Group("/api")
	api.NewFlightHandler(svc.Flights).Register(apiGroup.Group("/flights"), svc.Verifier.Optional(), required)
	api.NewBookingHandler(svc.Bookings).Register(apiGroup.Group("/bookings", required))
	api.NewWalletHandler(svc.Wallet).Register(apiGroup.Group("/wallet", required))

	return router, nil
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		c.JSON(status, gin.H{"success": status == http.StatusOK, "data": report})
	}
}
