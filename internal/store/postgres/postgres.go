// Package postgres implements the store contract on PostgreSQL via pgx.
// All six entity kinds share a single records table keyed by (kind, id);
// the sync lock and watermarks live in a sync_meta key-value table whose
// writes are single-statement upserts.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbitview/spacedata-server/internal/store"
)

//go:embed schema.sql
var schema string

const defaultConnectTimeout = 10 * time.Second

// Options configures the connection pool.
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns int32
}

// Store is the PostgreSQL-backed implementation.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New opens a connection pool and verifies connectivity.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("database host is required")
	}
	if opts.Database == "" {
		return nil, fmt.Errorf("database name is required")
	}
	sslMode := opts.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		opts.Host, opts.Port, opts.User, opts.Password, opts.Database, sslMode,
		int(defaultConnectTimeout.Seconds()),
	)

	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool; the caller keeps ownership.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema applies the idempotent bootstrap DDL.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
