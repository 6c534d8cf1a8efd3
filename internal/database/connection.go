package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/docqa/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	defaultConnectAttempts = 1
	defaultRetryDelay      = time.Second
	maxRetryDelay          = 30 * time.Second
)

// Config holds database connection configuration.
type Config struct {
	URL      string
	MaxConns int32
	MinConns int32

	// ConnectAttempts is how many times the first ping is tried before
	// giving up. Each retry waits twice as long as the previous one.
	ConnectAttempts int
	RetryDelay      time.Duration
}

// NewPool creates a pgx connection pool and waits until the database answers
// a ping, retrying as configured.
func NewPool(ctx context.Context, cfg Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	logger = logging.OrNop(logger)

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := waitForDatabase(ctx, pool, cfg, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func waitForDatabase(ctx context.Context, pool *pgxpool.Pool, cfg Config, logger *zap.Logger) error {
	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = defaultConnectAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		logger.Warn("database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to ping database: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
	return fmt.Errorf("failed to ping database after %d attempts: %w", attempts, err)
}
