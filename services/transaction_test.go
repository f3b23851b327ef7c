package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lakshyafoods/storefront/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(repositories.Transaction)
	return tx, args.Error(1)
}

func (m *mockTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return m.Called(ctx, fn).Error(0)
}

type inTx struct{}

// recordingTx counts how it was finished
type recordingTx struct {
	ctx         context.Context
	commitErr   error
	rollbackErr error
	commits     int
	rollbacks   int
}

func newRecordingTx() *recordingTx {
	return &recordingTx{ctx: context.WithValue(context.Background(), inTx{}, true)}
}

func (t *recordingTx) Context() context.Context { return t.ctx }

func (t *recordingTx) Commit() error {
	t.commits++
	return t.commitErr
}

func (t *recordingTx) Rollback() error {
	t.rollbacks++
	return t.rollbackErr
}

func beginReturning(tx *recordingTx) *mockTxManager {
	mgr := new(mockTxManager)
	mgr.On("Begin", mock.Anything).Return(tx, nil)
	return mgr
}

func TestWithTransaction(t *testing.T) {
	errOrder := errors.New("order not found")

	tests := []struct {
		name          string
		commitErr     error
		rollbackErr   error
		fnErr         error
		wantCommits   int
		wantRollbacks int
		wantErr       []error
		wantErrText   string
	}{
		{name: "commits on success", wantCommits: 1},
		{name: "rolls back on error", fnErr: errOrder, wantRollbacks: 1, wantErr: []error{errOrder}},
		{
			name:          "rollback failure keeps both errors",
			fnErr:         errOrder,
			rollbackErr:   errors.New("conn closed"),
			wantRollbacks: 1,
			wantErr:       []error{errOrder},
			wantErrText:   "conn closed",
		},
		{
			name:        "commit failure",
			commitErr:   errors.New("serialization failure"),
			wantCommits: 1,
			wantErrText: "failed to commit transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newRecordingTx()
			tx.commitErr = tt.commitErr
			tx.rollbackErr = tt.rollbackErr
			mgr := beginReturning(tx)

			err := WithTransaction(context.Background(), mgr, func(ctx context.Context) error {
				assert.Equal(t, true, ctx.Value(inTx{}))
				return tt.fnErr
			})

			assert.Equal(t, tt.wantCommits, tx.commits)
			assert.Equal(t, tt.wantRollbacks, tx.rollbacks)
			if tt.wantErr == nil && tt.wantErrText == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, target := range tt.wantErr {
				assert.ErrorIs(t, err, target)
			}
			if tt.wantErrText != "" {
				assert.Contains(t, err.Error(), tt.wantErrText)
			}
		})
	}
}

func TestWithTransaction_BeginFailure(t *testing.T) {
	mgr := new(mockTxManager)
	mgr.On("Begin", mock.Anything).Return(nil, errors.New("too many connections"))

	called := false
	err := WithTransaction(context.Background(), mgr, func(ctx context.Context) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.False(t, called)
	mgr.AssertExpectations(t)
}

func TestWithTransaction_PanicRollsBack(t *testing.T) {
	tx := newRecordingTx()
	mgr := beginReturning(tx)

	assert.PanicsWithValue(t, "invariant broken", func() {
		_ = WithTransaction(context.Background(), mgr, func(ctx context.Context) error {
			panic("invariant broken")
		})
	})
	assert.Equal(t, 1, tx.rollbacks)
	assert.Zero(t, tx.commits)
}

func TestWithTransactionResult(t *testing.T) {
	t.Run("returns the value on commit", func(t *testing.T) {
		tx := newRecordingTx()

		total, err := WithTransactionResult(context.Background(), beginReturning(tx), func(ctx context.Context) (int, error) {
			return 1250, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1250, total)
		assert.Equal(t, 1, tx.commits)
	})

	t.Run("commit failure drops the value", func(t *testing.T) {
		tx := newRecordingTx()
		tx.commitErr = errors.New("disk full")

		total, err := WithTransactionResult(context.Background(), beginReturning(tx), func(ctx context.Context) (int, error) {
			return 1250, nil
		})

		assert.Error(t, err)
		assert.Zero(t, total)
	})
}
