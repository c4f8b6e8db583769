package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serializationFailure() error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access due to read/write dependencies among transactions"}
}

func newMockExecutor(t *testing.T, policy RetryPolicy) (*Executor, sqlmock.Sqlmock, *[]time.Duration) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var sleeps []time.Duration
	e := NewExecutor(NewPool(db), policy)
	e.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return e, mock, &sleeps
}

func insert(ctx context.Context, tx DBTX) error {
	_, err := tx.ExecContext(ctx, "INSERT INTO t")
	return err
}

var defaultPolicy = RetryPolicy{Attempts: 3, FirstInterval: 10 * time.Millisecond, BackoffFactor: 2}

func TestExecutor_CommitsOnFirstAttempt(t *testing.T) {
	e, mock, sleeps := newMockExecutor(t, defaultPolicy)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	calls := 0
	err := e.Run(context.Background(), func(ctx context.Context, tx DBTX) error {
		calls++
		return insert(ctx, tx)
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_DomainErrorRollsBackWithoutRetry(t *testing.T) {
	e, mock, sleeps := newMockExecutor(t, defaultPolicy)

	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err := e.Run(context.Background(), func(ctx context.Context, tx DBTX) error {
		calls++
		return common.ErrEmailAlreadyVerified
	})

	require.ErrorIs(t, err, common.ErrEmailAlreadyVerified)
	assert.NotErrorIs(t, err, common.ErrTransactionConflictExhausted)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_RetriesSerializationFailure(t *testing.T) {
	e, mock, sleeps := newMockExecutor(t, defaultPolicy)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnError(serializationFailure())
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	calls := 0
	err := e.Run(context.Background(), func(ctx context.Context, tx DBTX) error {
		calls++
		return insert(ctx, tx)
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, *sleeps)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_RetriesConflictOnCommit(t *testing.T) {
	e, mock, _ := newMockExecutor(t, defaultPolicy)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(serializationFailure())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := e.Run(context.Background(), insert)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	e, mock, sleeps := newMockExecutor(t, defaultPolicy)

	for i := 0; i < defaultPolicy.Attempts; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO t").WillReturnError(serializationFailure())
		mock.ExpectRollback()
	}

	err := e.Run(context.Background(), insert)

	require.ErrorIs(t, err, common.ErrTransactionConflictExhausted)
	assert.True(t, IsSerializationFailure(err), "driver error must stay in the chain")
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *sleeps)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_BackoffFactorIsApplied(t *testing.T) {
	policy := RetryPolicy{Attempts: 4, FirstInterval: 100 * time.Millisecond, BackoffFactor: 1.5}
	e, mock, sleeps := newMockExecutor(t, policy)

	for i := 0; i < policy.Attempts; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO t").WillReturnError(serializationFailure())
		mock.ExpectRollback()
	}

	_ = e.Run(context.Background(), insert)

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 150 * time.Millisecond, 225 * time.Millisecond}, *sleeps)
}

func TestExecutor_OtherDriverErrorsAreNotRetried(t *testing.T) {
	e, mock, sleeps := newMockExecutor(t, defaultPolicy)

	uniqueViolation := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnError(uniqueViolation)
	mock.ExpectRollback()

	err := e.Run(context.Background(), insert)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23505", pgErr.Code)
	assert.NotErrorIs(t, err, common.ErrTransactionConflictExhausted)
	assert.Empty(t, *sleeps)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_CancelledDuringBackoff(t *testing.T) {
	e, mock, _ := newMockExecutor(t, defaultPolicy)
	e.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnError(serializationFailure())
	mock.ExpectRollback()

	err := e.Run(ctx, func(ctx context.Context, tx DBTX) error {
		cancel()
		return insert(ctx, tx)
	})

	require.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_PanicRollsBack(t *testing.T) {
	e, mock, _ := newMockExecutor(t, defaultPolicy)

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Panics(t, func() {
		_ = e.Run(context.Background(), func(ctx context.Context, tx DBTX) error {
			panic("kaput")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

type failingAcquirer struct{ err error }

func (f failingAcquirer) WithConn(context.Context, func(context.Context, *sql.Conn) error) error {
	return f.err
}

func TestExecutor_AcquireError(t *testing.T) {
	boom := errors.New("pool exhausted")
	e := NewExecutor(failingAcquirer{err: boom}, defaultPolicy)

	err := e.Run(context.Background(), insert)
	require.ErrorIs(t, err, boom)
}

func TestNewExecutor_NormalizesPolicy(t *testing.T) {
	e := NewExecutor(failingAcquirer{}, RetryPolicy{})
	assert.Equal(t, 1, e.policy.Attempts)
	assert.Equal(t, 1.0, e.policy.BackoffFactor)
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(serializationFailure()))
	assert.True(t, IsSerializationFailure(errors.Join(errors.New("db error"), serializationFailure())))
	assert.False(t, IsSerializationFailure(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsSerializationFailure(errors.New("40001")))
	assert.False(t, IsSerializationFailure(nil))
}
