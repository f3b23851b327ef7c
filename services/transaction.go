package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lakshyafoods/storefront/repositories"
)

// WithTransaction runs fn as one unit of work. See WithTransactionResult.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) error) error {
	_, err := WithTransactionResult(ctx, txMgr, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// WithTransactionResult runs fn with the transaction's context, so every
// repository call it makes joins the transaction. The transaction commits
// only when fn returns nil; an error or a panic rolls it back.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) (T, error)) (result T, err error) {
	tx, err := txMgr.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}

	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback()
		}
	}()

	result, err = fn(tx.Context())
	if err != nil {
		finished = true
		if rbErr := tx.Rollback(); rbErr != nil {
			return result, errors.Join(err, rbErr)
		}
		return result, err
	}

	finished = true
	if err := tx.Commit(); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}
