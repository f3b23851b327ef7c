package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lakshyafoods/storefront/repositories"
	"go.uber.org/zap"
)

type txKey struct{}

// Executor runs statements on either the pool or an open transaction
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// GetExecutor picks the transaction carried by ctx when it belongs to db and
// the pool otherwise. The audit database never joins a main-database
// transaction.
func GetExecutor(ctx context.Context, db *DB) Executor {
	if tx := txFrom(ctx, db); tx != nil {
		return tx.sqlTx
	}
	return db.DB
}

func txFrom(ctx context.Context, db *DB) *pgTx {
	tx, ok := ctx.Value(txKey{}).(*pgTx)
	if !ok || tx.owner != db {
		return nil
	}
	return tx
}

type txManager struct {
	db     *DB
	logger *zap.Logger
}

// NewTransactionManager returns a manager whose transactions are picked up
// by every repository built on db.
func NewTransactionManager(db *DB, logger *zap.Logger) repositories.TransactionManager {
	return &txManager{db: db, logger: logger}
}

func (m *txManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	sqlTx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	tx := &pgTx{sqlTx: sqlTx, owner: m.db, logger: m.logger}
	tx.ctx = context.WithValue(ctx, txKey{}, tx)
	return tx, nil
}

// InTransaction commits when fn returns nil and rolls back otherwise. A
// call made while a transaction on the same database is already open runs
// inside that transaction and leaves commit to the outer call.
func (m *txManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	if outer := txFrom(ctx, m.db); outer != nil {
		return fn(ctx, outer)
	}

	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	if fnErr := fn(tx.Context(), tx); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.Error("rollback after failed unit of work",
				zap.Error(rbErr),
				zap.NamedError("cause", fnErr),
			)
		}
		return fnErr
	}
	return tx.Commit()
}

type pgTx struct {
	sqlTx  *sql.Tx
	owner  *DB
	ctx    context.Context
	logger *zap.Logger
}

func (t *pgTx) Context() context.Context { return t.ctx }

func (t *pgTx) Commit() error {
	if err := t.sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback is a no-op once the transaction has finished.
func (t *pgTx) Rollback() error {
	err := t.sqlTx.Rollback()
	switch {
	case err == nil, errors.Is(err, sql.ErrTxDone):
		return nil
	default:
		t.logger.Warn("transaction rollback failed", zap.Error(err))
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
}
