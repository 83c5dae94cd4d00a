package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashu1412/Flight-Booking/internal/domain"
)

func TestWalletRepository_LockBalance(t *testing.T) {
	mock := newMock(t)
	repo := NewWalletRepository(mock, testLogger)
	user := uuid.New()

	mock.ExpectQuery(`SELECT wallet_balance_cents FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(user).
		WillReturnRows(mock.NewRows([]string{"wallet_balance_cents"}).AddRow(int64(300000)))

	balance, err := repo.LockBalance(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, domain.MustParseMoney("3000"), balance)
}

func TestWalletRepository_Balance_UnknownUser(t *testing.T) {
	mock := newMock(t)
	repo := NewWalletRepository(mock, testLogger)
	user := uuid.New()

	mock.ExpectQuery("SELECT wallet_balance_cents").WithArgs(user).WillReturnError(pgx.ErrNoRows)

	_, err := repo.Balance(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestWalletRepository_SetBalance(t *testing.T) {
	mock := newMock(t)
	repo := NewWalletRepository(mock, testLogger)
	user := uuid.New()

	mock.ExpectExec("UPDATE users SET wallet_balance_cents").
		WithArgs(int64(25000), user).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.SetBalance(context.Background(), user, domain.MustParseMoney("250")))
}
