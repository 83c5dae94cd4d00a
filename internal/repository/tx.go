package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TxManager runs fn inside one database transaction. Repositories called
// with the context passed to fn join that transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type PGTxManager struct {
	db  DB
	log *zap.Logger
}

func NewTxManager(db DB, log *zap.Logger) *PGTxManager {
	return &PGTxManager{db: db, log: log.With(zap.String("repository", "tx"))}
}

func (m *PGTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return mapError(fmt.Errorf("begin tx: %w", err), nil)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.log.Warn("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(fmt.Errorf("commit tx: %w", err), nil)
	}
	return nil
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db DB) querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}

var _ TxManager = (*PGTxManager)(nil)
