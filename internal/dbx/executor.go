package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE raised by Postgres when a serializable transaction cannot be
// placed in a serial order.
const sqlStateSerializationFailure = "40001"

// RetryPolicy bounds how often a conflicting transaction is replayed.
type RetryPolicy struct {
	Attempts      int
	FirstInterval time.Duration
	BackoffFactor float64
}

// ConnAcquirer hands out a pinned connection for the duration of fn.
type ConnAcquirer interface {
	WithConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error
}

// Executor runs units of work in SERIALIZABLE transactions and replays them
// when the database reports a serialization failure. It knows nothing about
// what the unit of work does; every attempt starts from scratch.
type Executor struct {
	pool   ConnAcquirer
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	logger logging.Logger
}

func NewExecutor(pool ConnAcquirer, policy RetryPolicy) *Executor {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = 1
	}
	return &Executor{pool: pool, policy: policy, sleep: sleepContext, logger: logging.Nop()}
}

// WithLogger sets the logger used to report retries.
func (e *Executor) WithLogger(l logging.Logger) *Executor {
	e.logger = l
	return e
}

var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// Run executes fn. One connection is held for all attempts. Errors returned
// by fn that are not serialization failures roll the transaction back and
// are returned as is. When the last attempt still conflicts the result
// matches common.ErrTransactionConflictExhausted.
func (e *Executor) Run(ctx context.Context, fn TxFunc) error {
	return e.pool.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		intervals := e.backOff()

		for attempt := 1; ; attempt++ {
			err := WithTx(ctx, conn, serializable, fn)
			if err == nil {
				return nil
			}
			if !IsSerializationFailure(err) {
				return err
			}
			if attempt >= e.policy.Attempts {
				e.logger.Warn(ctx, "serialization conflict persisted", "attempts", attempt)
				return fmt.Errorf("%w after %d attempts: %w", common.ErrTransactionConflictExhausted, attempt, err)
			}

			wait := intervals.NextBackOff()
			e.logger.Debug(ctx, "serialization conflict, retrying", "attempt", attempt, "backoff", wait)
			if err := e.sleep(ctx, wait); err != nil {
				return err
			}
		}
	})
}

func (e *Executor) backOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     e.policy.FirstInterval,
		RandomizationFactor: 0,
		Multiplier:          e.policy.BackoffFactor,
		MaxInterval:         time.Duration(1<<63 - 1),
	}
	b.Reset()
	return b
}

// IsSerializationFailure reports whether err carries SQLSTATE 40001.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateSerializationFailure
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
