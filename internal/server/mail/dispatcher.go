package mail

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// RegistrationMailer sends registration letters.
type RegistrationMailer interface {
	SendRegistrationLetter(ctx context.Context, name, email, token string) error
}

// Dispatcher sends letters in the background so a slow relay never delays
// the caller. Failures are logged. Wait blocks until in-flight letters finish.
type Dispatcher struct {
	next    RegistrationMailer
	logger  logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(next RegistrationMailer, logger logging.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{next: next, logger: logger, timeout: timeout}
}

func (d *Dispatcher) SendRegistrationLetter(ctx context.Context, name, email, token string) error {
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		if err := d.next.SendRegistrationLetter(ctx, name, email, token); err != nil {
			d.logger.Error(ctx, "registration letter not sent", "email", email, "error", err)
			return
		}
		d.logger.Info(ctx, "registration letter sent", "email", email)
	}()

	return nil
}

// Wait blocks until every dispatched letter is done or ctx expires.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
