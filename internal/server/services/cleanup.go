package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// Sweeper deletes newcomers whose registration tokens have all expired.
// Such signups can no longer be verified but still count toward the
// per-email pending cap.
type Sweeper struct {
	tx          TxRunner
	repomanager repomanager.RepositoryManager
	clock       Clock
	logger      logging.Logger
	interval    time.Duration
}

func NewSweeper(tx TxRunner, m repomanager.RepositoryManager, clock Clock, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{tx: tx, repomanager: m, clock: clock, interval: interval, logger: logger}
}

// RunOnce performs a single sweep and returns the number of deleted newcomers.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.tx.Run(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Newcomers(tx).DeleteStale(ctx, s.clock.Now())
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables the sweep.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.RunOnce(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error(ctx, "stale signup sweep failed", "error", err)
				}
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "stale signups removed", "count", n)
			}
		}
	}
}
