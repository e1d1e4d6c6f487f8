// Package backend opens the movie and user collections selected by
// STORE_DRIVER.
package backend

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Clark-Hu/notflix/db"
	"github.com/Clark-Hu/notflix/internal/config"
	httpserver "github.com/Clark-Hu/notflix/internal/http"
	"github.com/Clark-Hu/notflix/internal/memory"
	"github.com/Clark-Hu/notflix/internal/metrics"
	"github.com/Clark-Hu/notflix/internal/rating"
	"github.com/Clark-Hu/notflix/internal/repository"
	"github.com/Clark-Hu/notflix/internal/seed"
	"github.com/Clark-Hu/notflix/internal/store"
)

// MovieStore is everything the server, the rating engine and the seeder need
// from the movie collection.
type MovieStore interface {
	httpserver.MovieReader
	rating.Store
	seed.Creator
}

// Backend bundles the opened collections.
type Backend struct {
	Movies MovieStore
	Users  httpserver.UserStore
	Health httpserver.HealthChecker
	// PoolStats is set when the store has a connection pool to observe.
	PoolStats metrics.PoolStats
	close     func()
}

// Close releases the underlying connections.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to the configured store. For Postgres the embedded schema is
// applied before returning.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Printf("backend: using in-memory store")
		st := memory.New()
		return &Backend{Movies: st.Movies(), Users: st.Users(), Health: st}, nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg config.Config, logger *log.Logger) (*Backend, error) {
	dbCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DBConnTimeoutSecs)*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := st.Migrate(dbCtx, db.Migrations); err != nil {
		st.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	repo := repository.New(st)
	return &Backend{
		Movies:    repo.Movies,
		Users:     repo.Users,
		Health:    st,
		PoolStats: st.ConnCounts,
		close:     st.Close,
	}, nil
}
