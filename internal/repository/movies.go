package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/notflix/internal/domain"
)

// MoviesRepository stores movie documents. Ratings live inside the movie row
// as a JSONB array next to the derived average_rating column.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    tt_id,
    title,
    publish_date,
    length,
    director,
    description,
    ratings,
    average_rating
`

// Create inserts a movie with no ratings. An existing tt_id is left untouched
// and reported through the returned bool.
func (r *MoviesRepository) Create(ctx context.Context, movie domain.Movie) (bool, error) {
	const query = `
        INSERT INTO movies (tt_id, title, publish_date, length, director, description)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (tt_id) DO NOTHING
    `
	tag, err := r.pool.Exec(ctx, query,
		movie.TTID,
		movie.Title,
		movie.PublishDate,
		nullInt(movie.Length),
		nullString(movie.Director),
		nullString(movie.Description),
	)
	if err != nil {
		return false, fmt.Errorf("insert movie %s: %w", movie.TTID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns movies without their ratings.
func (r *MoviesRepository) List(ctx context.Context, page domain.Page) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies ORDER BY tt_id LIMIT $1 OFFSET $2`, movieColumns)
	movies, err := r.queryMovies(ctx, query, limitArg(page), page.Skip)
	if err != nil {
		return nil, err
	}
	return stripRatings(movies), nil
}

// Get returns a movie without its ratings.
func (r *MoviesRepository) Get(ctx context.Context, ttID string) (domain.Movie, error) {
	movie, err := r.FindMovie(ctx, ttID)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie.WithoutRatings(), nil
}

// FindMovie returns the full document including ratings.
func (r *MoviesRepository) FindMovie(ctx context.Context, ttID string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE tt_id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, ttID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// ListRated returns movies that carry an average, without their ratings.
func (r *MoviesRepository) ListRated(ctx context.Context, page domain.Page) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE average_rating > 0 ORDER BY tt_id LIMIT $1 OFFSET $2`, movieColumns)
	movies, err := r.queryMovies(ctx, query, limitArg(page), page.Skip)
	if err != nil {
		return nil, err
	}
	return stripRatings(movies), nil
}

// GetRated returns one rated movie without its ratings.
func (r *MoviesRepository) GetRated(ctx context.Context, ttID string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE tt_id = $1 AND average_rating > 0`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, ttID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie.WithoutRatings(), nil
}

func (r *MoviesRepository) queryMovies(ctx context.Context, query string, args ...any) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie       domain.Movie
		publishDate time.Time
		length      *int32
		director    *string
		description *string
		ratingsJSON []byte
		average     int32
	)

	err := row.Scan(
		&movie.TTID,
		&movie.Title,
		&publishDate,
		&length,
		&director,
		&description,
		&ratingsJSON,
		&average,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	movie.PublishDate = publishDate.UTC()
	movie.AverageRating = int(average)
	if length != nil {
		movie.Length = int(*length)
	}
	if director != nil {
		movie.Director = *director
	}
	if description != nil {
		movie.Description = *description
	}
	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &movie.Ratings); err != nil {
			return domain.Movie{}, fmt.Errorf("decode ratings of %s: %w", movie.TTID, err)
		}
	}
	return movie, nil
}

func stripRatings(movies []domain.Movie) []domain.Movie {
	for i := range movies {
		movies[i] = movies[i].WithoutRatings()
	}
	return movies
}

// limitArg maps an unlimited page to SQL NULL, which LIMIT treats as ALL.
func limitArg(page domain.Page) *int {
	if page.Limit <= 0 {
		return nil
	}
	limit := page.Limit
	return &limit
}

func nullInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func nullString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
