package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDatabaseEnv names a disposable Postgres database. Its tables are
// truncated by the tests below.
const testDatabaseEnv = "GOPHAUTH_TEST_DATABASE_DSN"

func newPostgresFixture(t *testing.T) (*RegistrationService, *fakeMailer) {
	t.Helper()

	dsn := os.Getenv(testDatabaseEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDatabaseEnv)
	}

	ctx := context.Background()
	pool, err := dbx.OpenPostgres(ctx, dbx.PoolConfig{DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	rm := repomanager.NewPostgresRepositoryManager()
	require.NoError(t, rm.RunMigrations(ctx, pool.DB()))

	_, err = pool.DB().ExecContext(ctx, `TRUNCATE registration_tokens, newcomers, users`)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	deps := Collaborators{
		Passwords: fakePasswords{},
		Tokens:    cryptox.NewTokens(),
		Mailer:    mailer,
		IDs:       uuidIDs{},
		Clock:     SystemClock{},
	}
	cfg := &config.Config{MaxNewcomersWithSameEmail: 3, RegistrationTokenLifetime: time.Hour}

	exec := dbx.NewExecutor(pool, dbx.RetryPolicy{Attempts: 20, FirstInterval: 5 * time.Millisecond, BackoffFactor: 1.5})
	return NewRegistrationService(exec, rm, deps, cfg, logging.Nop()), mailer
}

func TestPostgres_PendingCap(t *testing.T) {
	reg, _ := newPostgresFixture(t)
	ctx := context.Background()

	var results []error
	for i := 0; i < 4; i++ {
		_, err := reg.Register(ctx, "ivan", "cap@example.com", "pw")
		results = append(results, err)
	}

	assert.NoError(t, results[0])
	assert.NoError(t, results[1])
	assert.NoError(t, results[2])
	assert.ErrorIs(t, results[3], common.ErrTooManyPendingSignups)
}

func TestPostgres_ConcurrentVerificationPromotesOnce(t *testing.T) {
	reg, mailer := newPostgresFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := reg.Register(ctx, "ivan", "race@example.com", "pw")
		require.NoError(t, err)
	}
	require.Len(t, mailer.letters, 3)

	errs := make([]error, len(mailer.letters))
	var wg sync.WaitGroup
	for i, l := range mailer.letters {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			_, errs[i] = reg.Verify(ctx, token)
		}(i, l.token)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, common.ErrEmailAlreadyVerified):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	_, err := reg.Register(ctx, "ivan", "race@example.com", "pw")
	require.ErrorIs(t, err, common.ErrEmailAlreadyVerified)
}
