package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_RunOnce(t *testing.T) {
	f := newFixture()
	registerAndToken(t, f, "old", "old@v.an")
	f.clock.Advance(23 * time.Hour)
	registerAndToken(t, f, "fresh", "fresh@v.an")
	f.clock.Advance(2 * time.Hour)

	s := NewSweeper(f.tx, &fakeManager{store: f.store}, f.clock, time.Hour, logging.Nop())
	n, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.Len(t, f.store.newcomers, 1)
	assert.Equal(t, "fresh", f.store.newcomers[0].Name)
	require.Len(t, f.store.tokens, 1)
}

func TestSweeper_FreesPendingCap(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		registerAndToken(t, f, "ivan", "i@v.an")
	}
	f.clock.Advance(25 * time.Hour)

	s := NewSweeper(f.tx, &fakeManager{store: f.store}, f.clock, time.Hour, logging.Nop())
	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	_, err = f.reg.Register(context.Background(), "ivan", "i@v.an", "pw")
	assert.NoError(t, err)
}

func TestSweeper_RunLoop(t *testing.T) {
	f := newFixture()
	registerAndToken(t, f, "old", "old@v.an")
	f.clock.Advance(48 * time.Hour)

	s := NewSweeper(f.tx, &fakeManager{store: f.store}, f.clock, 5*time.Millisecond, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		f.tx.mu.Lock()
		defer f.tx.mu.Unlock()
		return len(f.store.newcomers) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestSweeper_DisabledReturnsImmediately(t *testing.T) {
	f := newFixture()
	s := NewSweeper(f.tx, &fakeManager{store: f.store}, f.clock, 0, logging.Nop())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run must return when the interval is not positive")
	}
}
