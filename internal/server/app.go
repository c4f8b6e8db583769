// Package server wires the gophauth process together: logging, tracing, the
// connection pool and migrations, the retrying executor, the services, the
// registration mailer, the stale signup sweeper and the gRPC endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/mail"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/telemetry"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const (
	mailTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	pool          *dbx.Pool
	dispatcher    *mail.Dispatcher
	grpcServer    *gs.GRPCServer
	sweeper       *services.Sweeper
	traceShutdown telemetry.ShutdownFunc
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	traceShutdown, err := telemetry.Setup(ctx, c.OTLPEndpoint, common.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	pool, err := dbx.OpenPostgres(ctx, dbx.PoolConfig{
		DSN:             c.DatabaseDSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
	})
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, err
	}

	app, err := newApp(ctx, c, logger, pool)
	if err != nil {
		_ = pool.Close()
		_ = traceShutdown(ctx)
		return nil, err
	}
	app.traceShutdown = traceShutdown
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, pool *dbx.Pool) (*App, error) {
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, pool.DB()); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	letters, err := mail.NewService(newSender(c, logger), c.MailDomain, c.RegisterVerifyLinkTemplate)
	if err != nil {
		return nil, fmt.Errorf("mail init error: %w", err)
	}
	dispatcher := mail.NewDispatcher(letters, logger.With("module", "mail"), mailTimeout)

	executor := dbx.NewExecutor(pool, dbx.RetryPolicy{
		Attempts:      c.TransactionRetryAttempts,
		FirstInterval: c.TransactionRetryIntervalFirst,
		BackoffFactor: c.TransactionRetryBackoffFactor,
	}).WithLogger(logger.With("module", "executor"))

	deps := services.DefaultCollaborators(dispatcher)

	registration := services.NewRegistrationService(executor, rm, deps, c, logger.With("module", "registration"))
	users := services.NewUserService(pool.DB(), rm, deps.Passwords, c)
	sweeper := services.NewSweeper(executor, rm, deps.Clock, c.CleanupInterval, logger.With("module", "sweeper"))

	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, registration, users, pool, c.SecretKey)

	return &App{
		config:        c,
		logger:        logger,
		pool:          pool,
		dispatcher:    dispatcher,
		grpcServer:    grpcServer,
		sweeper:       sweeper,
		traceShutdown: func(context.Context) error { return nil },
	}, nil
}

func newSender(c *config.Config, logger logging.Logger) mail.Sender {
	if c.SMTPHost == "" {
		return mail.NewLogSender(logger.With("module", "mail"))
	}
	return mail.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword)
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server error", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, a termination signal arrives or the
// gRPC server fails, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		serveErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		serveErr = app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	return errors.Join(serveErr, app.shutdown())
}

func (app *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	app.logger.Info(ctx, "Shutting down...")

	var errs []error
	if err := app.dispatcher.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("mail drain: %w", err))
	}
	if err := app.traceShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer flush: %w", err))
	}
	if err := app.pool.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}
	return errors.Join(errs...)
}
