package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Pool owns the process-wide connection pool. Acquisition blocks once
// MaxOpenConns connections are in use.
type Pool struct {
	db *sql.DB
}

// NewPool wraps an already opened handle.
func NewPool(db *sql.DB) *Pool {
	return &Pool{db: db}
}

// OpenPostgres opens a pgx-backed pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	p := NewPool(db)
	if err := p.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return p, nil
}

// DB exposes the raw handle for non-transactional reads and migrations.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// WithConn pins one connection for the duration of fn and returns it to
// the pool afterwards.
func (p *Pool) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// Ping runs a trivial statement through the pool.
func (p *Pool) Ping(ctx context.Context) error {
	var ok bool
	if err := p.db.QueryRowContext(ctx, "SELECT TRUE").Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unexpected ping result")
	}
	return nil
}

func (p *Pool) Close() error {
	return p.db.Close()
}
