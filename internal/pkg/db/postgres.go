// Package db provides PostgreSQL connection management and schema
// migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"casino-table-bot/internal/config"
)

// Pool wraps pgxpool.Pool.
type Pool struct {
	*pgxpool.Pool
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// PoolConfig builds the pgxpool settings for cfg.
func PoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pc.MaxConns = int32(max(cfg.PoolSize, 1))
	pc.MinConns = max(pc.MaxConns/4, 1)
	pc.ConnConfig.ConnectTimeout = orDefault(cfg.ConnectTimeout, 10*time.Second)
	pc.MaxConnLifetime = orDefault(cfg.MaxConnLifetime, time.Hour)
	pc.MaxConnIdleTime = orDefault(cfg.MaxConnIdleTime, 30*time.Minute)
	pc.HealthCheckPeriod = 30 * time.Second
	return pc, nil
}

// Open migrates the schema when configured to, then connects.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg.MigrateOnStart {
		if err := Migrate(cfg.DSN()); err != nil {
			return nil, err
		}
	}
	return NewPool(ctx, cfg)
}

// NewPool creates a PostgreSQL connection pool and pings it.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int32("max_conns", pc.MaxConns).
		Msg("Connecting to PostgreSQL")

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to PostgreSQL")
	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("PostgreSQL connection pool closed")
	}
}

// HealthCheck pings the database.
func (p *Pool) HealthCheck(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
