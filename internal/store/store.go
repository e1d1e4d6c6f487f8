package store

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Options controls connection-pool behaviour.
type Options struct {
	MaxConns               int32
	MinConns               int32
	MaxConnIdleTime        time.Duration
	MaxConnLifetime        time.Duration
	ConnTimeout            time.Duration
	StatementCacheCapacity int
	Logger                 *log.Logger
}

// Store owns the Postgres connection pool that backs the movie and user
// collections. It is constructed once and handed to the repositories.
type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	opts   Options
}

// New initializes a connection pool and validates connectivity with Ping.
func New(ctx context.Context, dbURL string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("store: initializing connection pool (max=%d, min=%d, idle=%s, life=%s, stmt_cache=%d)",
		opts.MaxConns, opts.MinConns, opts.MaxConnIdleTime, opts.MaxConnLifetime, opts.StatementCacheCapacity)

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.StatementCacheCapacity >= 0 {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
		cfg.ConnConfig.StatementCacheCapacity = opts.StatementCacheCapacity
	}

	connCtx := ctx
	if opts.ConnTimeout > 0 {
		var cancel context.CancelFunc
		connCtx, cancel = context.WithTimeout(ctx, opts.ConnTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Println("store: database connection established")

	return &Store{pool: pool, logger: logger, opts: opts}, nil
}

// Migrate applies every *.up.sql file in fsys in lexical order. The bundled
// schema is idempotent, so this runs on every start.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("store not initialized")
	}
	return ApplyMigrations(ctx, s.pool, fsys, s.logger)
}

// ApplyMigrations runs the schema files against any pool; tests use it on
// pools they create themselves.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, logger *log.Logger) error {
	files, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no migration files found")
	}
	sort.Strings(files)
	for _, path := range files {
		payload, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", path, err)
		}
		if _, err := pool.Exec(ctx, string(payload)); err != nil {
			return fmt.Errorf("apply migration %s: %w", path, err)
		}
		if logger != nil {
			logger.Printf("store: applied %s", path)
		}
	}
	return nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.logger.Println("store: closing connection pool")
	s.pool.Close()
}

// HealthCheck verifies the database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("store not initialized")
	}
	checkCtx := ctx
	if s.opts.ConnTimeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, s.opts.ConnTimeout)
		defer cancel()
	}
	return s.pool.Ping(checkCtx)
}

// Pool exposes the underlying pgx pool for repositories.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Stats exposes pgxpool statistics for observability.
func (s *Store) Stats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// ConnCounts reports total, idle and acquired connections for the metrics
// gauges.
func (s *Store) ConnCounts() (total, idle, acquired int32) {
	stat := s.Stats()
	if stat == nil {
		return 0, 0, 0
	}
	return stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns()
}
