package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/repository"
	"go.uber.org/zap"
)

type Config struct {
	// AttemptThreshold is the number of attempts inside Window that turns surge on.
	AttemptThreshold int
	Window           time.Duration
	// ResetWindow is measured from the oldest attempt of a surging window.
	ResetWindow time.Duration
	Percentage  float64
}

func DefaultConfig() Config {
	return Config{
		AttemptThreshold: 3,
		Window:           5 * time.Minute,
		ResetWindow:      10 * time.Minute,
		Percentage:       10,
	}
}

func (c Config) Validate() error {
	switch {
	case c.AttemptThreshold <= 0:
		return errors.New("attempt threshold must be positive")
	case c.Window <= 0:
		return errors.New("surge window must be positive")
	case c.ResetWindow <= 0:
		return errors.New("reset window must be positive")
	case c.Percentage < 0:
		return errors.New("surge percentage must not be negative")
	}
	return nil
}

type SurgeStatus struct {
	AttemptCount      int        `json:"attempt_count"`
	Threshold         int        `json:"threshold"`
	IsSurging         bool       `json:"is_surging"`
	SurgePercentage   float64    `json:"surge_percentage"`
	RemainingAttempts int        `json:"remaining_attempts"`
	ResetTime         *time.Time `json:"reset_time,omitempty"`
}

type PriceInfo struct {
	BasePrice         domain.Money `json:"base_price"`
	CurrentPrice      domain.Money `json:"current_price"`
	SurgeApplied      bool         `json:"surge_applied"`
	SurgePercentage   float64      `json:"surge_percentage"`
	AttemptCount      int          `json:"attempt_count"`
	RemainingAttempts int          `json:"remaining_attempts"`
	ResetTime         *time.Time   `json:"reset_time,omitempty"`
}

type Engine struct {
	attempts repository.AttemptRepository
	cfg      Config
	now      func() time.Time
	log      *zap.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(attempts repository.AttemptRepository, cfg Config, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		attempts: attempts,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With(zap.String("service", "pricing")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) RecordAttempt(ctx context.Context, userID, flightID uuid.UUID) error {
	attempt := domain.BookingAttempt{
		ID:          uuid.New(),
		UserID:      userID,
		FlightID:    flightID,
		AttemptTime: e.now(),
	}
	if err := e.attempts.Record(ctx, attempt); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// CheckSurgeStatus counts attempts in [now-Window, now]. A surge whose reset
// time has passed is reported as a clear window even though the attempt rows
// still exist.
func (e *Engine) CheckSurgeStatus(ctx context.Context, userID, flightID uuid.UUID) (SurgeStatus, error) {
	now := e.now()
	count, oldest, err := e.attempts.WindowStats(ctx, userID, flightID, now.Add(-e.cfg.Window), now)
	if err != nil {
		return SurgeStatus{}, fmt.Errorf("surge status: %w", err)
	}

	idle := SurgeStatus{
		Threshold:         e.cfg.AttemptThreshold,
		RemainingAttempts: e.cfg.AttemptThreshold,
	}

	if count < e.cfg.AttemptThreshold {
		idle.AttemptCount = count
		idle.RemainingAttempts = e.cfg.AttemptThreshold - count
		return idle, nil
	}

	resetTime := oldest.Add(e.cfg.ResetWindow)
	if now.After(resetTime) {
		e.log.Debug("Surge expired",
			zap.String("user_id", userID.String()),
			zap.String("flight_id", flightID.String()),
			zap.Time("reset_time", resetTime),
		)
		return idle, nil
	}

	return SurgeStatus{
		AttemptCount:      count,
		Threshold:         e.cfg.AttemptThreshold,
		IsSurging:         true,
		SurgePercentage:   e.cfg.Percentage,
		RemainingAttempts: 0,
		ResetTime:         &resetTime,
	}, nil
}

// CalculatePrice counts as a booking attempt before pricing.
func (e *Engine) CalculatePrice(ctx context.Context, userID, flightID uuid.UUID, base domain.Money) (PriceInfo, error) {
	if err := e.RecordAttempt(ctx, userID, flightID); err != nil {
		return PriceInfo{}, err
	}
	return e.GetPriceInfo(ctx, userID, flightID, base)
}

// GetPriceInfo prices without recording an attempt.
func (e *Engine) GetPriceInfo(ctx context.Context, userID, flightID uuid.UUID, base domain.Money) (PriceInfo, error) {
	status, err := e.CheckSurgeStatus(ctx, userID, flightID)
	if err != nil {
		return PriceInfo{}, err
	}

	info := PriceInfo{
		BasePrice:         base,
		CurrentPrice:      base,
		AttemptCount:      status.AttemptCount,
		RemainingAttempts: status.RemainingAttempts,
		ResetTime:         status.ResetTime,
	}
	if status.IsSurging {
		info.SurgeApplied = true
		info.SurgePercentage = status.SurgePercentage
		info.CurrentPrice = base.ApplyPercent(status.SurgePercentage)
	}
	return info, nil
}

// CleanupExpiredAttempts removes attempts that can no longer influence a
// surge decision.
func (e *Engine) CleanupExpiredAttempts(ctx context.Context) (int64, error) {
	horizon := e.cfg.ResetWindow
	if e.cfg.Window > horizon {
		horizon = e.cfg.Window
	}
	removed, err := e.attempts.DeleteOlderThan(ctx, e.now().Add(-horizon))
	if err != nil {
		return 0, fmt.Errorf("cleanup attempts: %w", err)
	}
	if removed > 0 {
		e.log.Info("Removed expired booking attempts", zap.Int64("count", removed))
	}
	return removed, nil
}
