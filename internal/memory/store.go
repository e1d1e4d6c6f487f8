// Package memory keeps the movie and user collections in process memory. It
// honours the same contracts as the Postgres repositories: every mutation is
// applied to one document under the store lock, which stands in for the
// database's row-level find-and-modify.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Clark-Hu/notflix/internal/domain"
)

// Store is an in-memory movie and user collection.
type Store struct {
	mu     sync.RWMutex
	movies map[string]domain.Movie
	users  map[string]domain.User
}

func New() *Store {
	return &Store{
		movies: make(map[string]domain.Movie),
		users:  make(map[string]domain.User),
	}
}

// Movies and Users expose the two collections under the method names the
// HTTP layer expects.
func (s *Store) Movies() *Movies { return &Movies{s: s} }

func (s *Store) Users() *Users { return &Users{s: s} }

// HealthCheck always succeeds.
func (s *Store) HealthCheck(context.Context) error { return nil }

// Movies is the movie collection view of a Store.
type Movies struct {
	s *Store
}

// Create inserts movie without ratings; an existing tt_id is left untouched.
func (m *Movies) Create(_ context.Context, movie domain.Movie) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.movies[movie.TTID]; ok {
		return false, nil
	}
	movie.Ratings = nil
	movie.AverageRating = 0
	m.s.movies[movie.TTID] = movie
	return true, nil
}

func (m *Movies) List(_ context.Context, page domain.Page) ([]domain.Movie, error) {
	return m.collect(page, func(domain.Movie) bool { return true }, domain.Movie.WithoutRatings), nil
}

func (m *Movies) Get(ctx context.Context, ttID string) (domain.Movie, error) {
	movie, err := m.FindMovie(ctx, ttID)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie.WithoutRatings(), nil
}

func (m *Movies) FindMovie(_ context.Context, ttID string) (domain.Movie, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	movie, ok := m.s.movies[ttID]
	if !ok {
		return domain.Movie{}, domain.ErrNotFound
	}
	return movie.Clone(), nil
}

func (m *Movies) ListRated(_ context.Context, page domain.Page) ([]domain.Movie, error) {
	return m.collect(page, isRated, domain.Movie.WithoutRatings), nil
}

func (m *Movies) GetRated(ctx context.Context, ttID string) (domain.Movie, error) {
	movie, err := m.FindMovie(ctx, ttID)
	if err != nil {
		return domain.Movie{}, err
	}
	if !isRated(movie) {
		return domain.Movie{}, domain.ErrNotFound
	}
	return movie.WithoutRatings(), nil
}

func (m *Movies) FindRatedBy(ctx context.Context, ttID, username string) (domain.Movie, error) {
	movie, err := m.FindMovie(ctx, ttID)
	if err != nil {
		return domain.Movie{}, err
	}
	if _, ok := movie.RatingBy(username); !ok {
		return domain.Movie{}, domain.ErrNotFound
	}
	return movie, nil
}

func (m *Movies) GetRatedBy(ctx context.Context, ttID, username string) (domain.Movie, error) {
	movie, err := m.FindRatedBy(ctx, ttID, username)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie.OnlyRatingBy(username), nil
}

func (m *Movies) ListRatedBy(_ context.Context, username string, page domain.Page) ([]domain.Movie, error) {
	rated := func(movie domain.Movie) bool {
		_, ok := movie.RatingBy(username)
		return ok
	}
	only := func(movie domain.Movie) domain.Movie { return movie.OnlyRatingBy(username) }
	return m.collect(page, rated, only), nil
}

func (m *Movies) AddRating(_ context.Context, ttID string, rating domain.Rating, avg int) error {
	_, err := m.modify(ttID,
		func(movie domain.Movie) error {
			if _, ok := movie.RatingBy(rating.Username); ok {
				return domain.Conflict("Movie already rated.")
			}
			return nil
		},
		func(movie *domain.Movie) {
			movie.Ratings = append(movie.Ratings, rating)
			movie.AverageRating = avg
		},
	)
	return err
}

func (m *Movies) SetRatingPoints(_ context.Context, ttID, username string, points int) (domain.Movie, error) {
	return m.modify(ttID, ratedBy(username), func(movie *domain.Movie) {
		for i := range movie.Ratings {
			if movie.Ratings[i].Username == username {
				movie.Ratings[i].Points = points
			}
		}
	})
}

func (m *Movies) SetAverage(_ context.Context, ttID string, avg int) error {
	_, err := m.modify(ttID, func(domain.Movie) error { return nil }, func(movie *domain.Movie) {
		movie.AverageRating = avg
	})
	return err
}

func (m *Movies) PullRating(_ context.Context, ttID, username string, avg int) error {
	_, err := m.modify(ttID, ratedBy(username), func(movie *domain.Movie) {
		kept := make([]domain.Rating, 0, len(movie.Ratings))
		for _, r := range movie.Ratings {
			if r.Username != username {
				kept = append(kept, r)
			}
		}
		movie.Ratings = kept
		movie.AverageRating = avg
	})
	return err
}

// modify is the in-memory find-and-modify: it returns the document as it was
// before mutate ran.
func (m *Movies) modify(ttID string, match func(domain.Movie) error, mutate func(*domain.Movie)) (domain.Movie, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	current, ok := m.s.movies[ttID]
	if !ok {
		return domain.Movie{}, domain.ErrNotFound
	}
	if err := match(current); err != nil {
		return domain.Movie{}, err
	}
	next := current.Clone()
	mutate(&next)
	m.s.movies[ttID] = next
	return current.Clone(), nil
}

func (m *Movies) collect(page domain.Page, keep func(domain.Movie) bool, view func(domain.Movie) domain.Movie) []domain.Movie {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	items := make([]domain.Movie, 0, len(m.s.movies))
	for _, movie := range m.s.movies {
		if keep(movie) {
			items = append(items, view(movie.Clone()))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].TTID < items[j].TTID })
	return domain.Apply(items, page)
}

func isRated(m domain.Movie) bool { return m.AverageRating > 0 }

func ratedBy(username string) func(domain.Movie) error {
	return func(m domain.Movie) error {
		if _, ok := m.RatingBy(username); !ok {
			return domain.ErrNotFound
		}
		return nil
	}
}

// Users is the user collection view of a Store.
type Users struct {
	s *Store
}

func (u *Users) Create(_ context.Context, user domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[user.Username]; ok {
		return domain.Conflict("Username occupied.")
	}
	u.s.users[user.Username] = user
	return nil
}

func (u *Users) Get(_ context.Context, username string) (domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (u *Users) List(_ context.Context, page domain.Page) ([]domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	users := make([]domain.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return domain.Apply(users, page), nil
}
