package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/repository"
	"go.uber.org/zap"
)

type TransactionType string

const (
	TransactionDebit  TransactionType = "DEBIT"
	TransactionCredit TransactionType = "CREDIT"
)

type Transaction struct {
	Type            TransactionType `json:"type"`
	PreviousBalance domain.Money    `json:"previous_balance"`
	Amount          domain.Money    `json:"amount"`
	NewBalance      domain.Money    `json:"new_balance"`
	At              time.Time       `json:"timestamp"`
}

type Sufficiency struct {
	Balance      domain.Money `json:"balance"`
	Required     domain.Money `json:"required"`
	IsSufficient bool         `json:"is_sufficient"`
	Shortfall    domain.Money `json:"shortfall"`
}

type Ledger struct {
	wallets        repository.WalletRepository
	tx             repository.TxManager
	defaultBalance domain.Money
	now            func() time.Time
	log            *zap.Logger
}

func NewLedger(wallets repository.WalletRepository, tx repository.TxManager, defaultBalance domain.Money, log *zap.Logger) *Ledger {
	return &Ledger{
		wallets:        wallets,
		tx:             tx,
		defaultBalance: defaultBalance,
		now:            time.Now,
		log:            log.With(zap.String("service", "wallet")),
	}
}

func (l *Ledger) Balance(ctx context.Context, userID uuid.UUID) (domain.Money, error) {
	return l.wallets.Balance(ctx, userID)
}

// Check reports whether the balance covers amount without taking any lock.
func (l *Ledger) Check(ctx context.Context, userID uuid.UUID, amount domain.Money) (Sufficiency, error) {
	if amount <= 0 {
		return Sufficiency{}, domain.ValidationError("amount must be positive")
	}
	balance, err := l.wallets.Balance(ctx, userID)
	if err != nil {
		return Sufficiency{}, err
	}

	s := Sufficiency{
		Balance:      balance,
		Required:     amount,
		IsSufficient: balance >= amount,
	}
	if !s.IsSufficient {
		s.Shortfall = amount - balance
	}
	return s, nil
}

// Debit locks the user's row, verifies the balance and writes the new value
// in one transaction. Inside an outer WithTx it joins that transaction.
func (l *Ledger) Debit(ctx context.Context, userID uuid.UUID, amount domain.Money) (*Transaction, error) {
	if amount <= 0 {
		return nil, domain.ValidationError("debit amount must be positive")
	}

	var result *Transaction
	err := l.tx.WithTx(ctx, func(ctx context.Context) error {
		balance, err := l.wallets.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if balance < amount {
			return &domain.InsufficientBalanceError{Required: amount, Available: balance}
		}

		next := balance - amount
		if err := l.wallets.SetBalance(ctx, userID, next); err != nil {
			return err
		}
		result = &Transaction{
			Type:            TransactionDebit,
			PreviousBalance: balance,
			Amount:          amount,
			NewBalance:      next,
			At:              l.now(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("debit wallet: %w", err)
	}

	l.log.Info("Wallet debited",
		zap.String("user_id", userID.String()),
		zap.Stringer("amount", amount),
		zap.Stringer("new_balance", result.NewBalance),
	)
	return result, nil
}

func (l *Ledger) Credit(ctx context.Context, userID uuid.UUID, amount domain.Money) (*Transaction, error) {
	if amount <= 0 {
		return nil, domain.ValidationError("credit amount must be positive")
	}

	var result *Transaction
	err := l.tx.WithTx(ctx, func(ctx context.Context) error {
		balance, err := l.wallets.LockBalance(ctx, userID)
		if err != nil {
			return err
		}

		next := balance + amount
		if err := l.wallets.SetBalance(ctx, userID, next); err != nil {
			return err
		}
		result = &Transaction{
			Type:            TransactionCredit,
			PreviousBalance: balance,
			Amount:          amount,
			NewBalance:      next,
			At:              l.now(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	l.log.Info("Wallet credited",
		zap.String("user_id", userID.String()),
		zap.Stringer("amount", amount),
		zap.Stringer("new_balance", result.NewBalance),
	)
	return result, nil
}

// Reset restores the configured default balance.
func (l *Ledger) Reset(ctx context.Context, userID uuid.UUID) (domain.Money, error) {
	if err := l.wallets.SetBalance(ctx, userID, l.defaultBalance); err != nil {
		return 0, fmt.Errorf("reset wallet: %w", err)
	}
	return l.defaultBalance, nil
}
