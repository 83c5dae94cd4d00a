package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"go.uber.org/zap"
)

type WalletRepository interface {
	Balance(ctx context.Context, userID uuid.UUID) (domain.Money, error)
	LockBalance(ctx context.Context, userID uuid.UUID) (domain.Money, error)
	SetBalance(ctx context.Context, userID uuid.UUID, balance domain.Money) error
}

type PGWalletRepository struct {
	db  DB
	log *zap.Logger
}

func NewWalletRepository(db DB, log *zap.Logger) *PGWalletRepository {
	return &PGWalletRepository{db: db, log: log.With(zap.String("repository", "wallet"))}
}

func (r *PGWalletRepository) Balance(ctx context.Context, userID uuid.UUID) (domain.Money, error) {
	var balance int64
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT wallet_balance_cents FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		return 0, mapError(err, domain.ErrUserNotFound)
	}
	return domain.Money(balance), nil
}

// LockBalance reads the balance with a row lock held until the enclosing
// transaction ends. Concurrent callers for the same user queue here.
func (r *PGWalletRepository) LockBalance(ctx context.Context, userID uuid.UUID) (domain.Money, error) {
	var balance int64
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT wallet_balance_cents FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		return 0, mapError(err, domain.ErrUserNotFound)
	}
	return domain.Money(balance), nil
}

func (r *PGWalletRepository) SetBalance(ctx context.Context, userID uuid.UUID, balance domain.Money) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE users SET wallet_balance_cents = $1, updated_at = now()
		WHERE id = $2`, int64(balance), userID)
	if err != nil {
		r.log.Error("Failed to update wallet balance", zap.Error(err), zap.String("user_id", userID.String()))
		return mapError(fmt.Errorf("set balance: %w", err), nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

var _ WalletRepository = (*PGWalletRepository)(nil)
