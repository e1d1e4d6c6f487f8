package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/notflix/internal/domain"
	"github.com/Clark-Hu/notflix/internal/store"
)

// ErrNotFound indicates the requested document does not exist or did not
// match the filter.
var ErrNotFound = domain.ErrNotFound

// Repository aggregates the movie and user collections.
type Repository struct {
	Movies *MoviesRepository
	Users  *UsersRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Movies: &MoviesRepository{pool: pool},
		Users:  &UsersRepository{pool: pool},
	}
}
