package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"go.uber.org/zap"
)

type AttemptRepository interface {
	Record(ctx context.Context, attempt domain.BookingAttempt) error
	// WindowStats counts attempts in [since, until] and returns the oldest of them.
	WindowStats(ctx context.Context, userID, flightID uuid.UUID, since, until time.Time) (int, time.Time, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type PGAttemptRepository struct {
	db  DB
	log *zap.Logger
}

func NewAttemptRepository(db DB, log *zap.Logger) *PGAttemptRepository {
	return &PGAttemptRepository{db: db, log: log.With(zap.String("repository", "attempt"))}
}

func (r *PGAttemptRepository) Record(ctx context.Context, attempt domain.BookingAttempt) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO booking_attempts (id, user_id, flight_id, attempt_time)
		VALUES ($1, $2, $3, $4)`,
		attempt.ID, attempt.UserID, attempt.FlightID, attempt.AttemptTime)
	if err != nil {
		return mapError(fmt.Errorf("record attempt: %w", err), nil)
	}
	return nil
}

func (r *PGAttemptRepository) WindowStats(ctx context.Context, userID, flightID uuid.UUID, since, until time.Time) (int, time.Time, error) {
	var (
		count  int
		oldest *time.Time
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT count(*), min(attempt_time)
		FROM booking_attempts
		WHERE user_id = $1 AND flight_id = $2 AND attempt_time >= $3 AND attempt_time <= $4`,
		userID, flightID, since, until).Scan(&count, &oldest)
	if err != nil {
		return 0, time.Time{}, mapError(fmt.Errorf("attempt window: %w", err), nil)
	}
	if oldest == nil {
		return count, time.Time{}, nil
	}
	return count, *oldest, nil
}

func (r *PGAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM booking_attempts WHERE attempt_time < $1`, cutoff)
	if err != nil {
		return 0, mapError(fmt.Errorf("delete attempts: %w", err), nil)
	}
	return tag.RowsAffected(), nil
}

var _ AttemptRepository = (*PGAttemptRepository)(nil)
