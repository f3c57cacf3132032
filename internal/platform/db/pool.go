package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings carries the connection parameters the service configuration
// provides. Zero sizing values keep the driver defaults.
type Settings struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// NewPool opens a pgx pool for the given settings and verifies the database
// is reachable before handing it out.
func NewPool(ctx context.Context, s Settings) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(s)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func poolConfig(s Settings) (*pgxpool.Config, error) {
	if s.URL == "" {
		return nil, errors.New("database url is empty")
	}
	cfg, err := pgxpool.ParseConfig(s.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if s.MaxConns > 0 {
		cfg.MaxConns = s.MaxConns
	}
	if s.MinConns > 0 {
		cfg.MinConns = s.MinConns
	}
	return cfg, nil
}
