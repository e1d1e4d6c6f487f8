package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/notflix/internal/domain"
)

// ratedByFilter matches movies whose ratings array holds an entry for $2.
const ratedByFilter = `ratings @> jsonb_build_array(jsonb_build_object('username', $2::text))`

// FindRatedBy returns the full movie document if username has rated it.
func (r *MoviesRepository) FindRatedBy(ctx context.Context, ttID, username string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE tt_id = $1 AND %s`, movieColumns, ratedByFilter)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, ttID, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// GetRatedBy returns the movie with only username's rating embedded.
func (r *MoviesRepository) GetRatedBy(ctx context.Context, ttID, username string) (domain.Movie, error) {
	movie, err := r.FindRatedBy(ctx, ttID, username)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie.OnlyRatingBy(username), nil
}

// ListRatedBy returns every movie username rated, each carrying only that
// user's rating.
func (r *MoviesRepository) ListRatedBy(ctx context.Context, username string, page domain.Page) ([]domain.Movie, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM movies
        WHERE ratings @> jsonb_build_array(jsonb_build_object('username', $1::text))
        ORDER BY tt_id LIMIT $2 OFFSET $3
    `, movieColumns)
	movies, err := r.queryMovies(ctx, query, username, limitArg(page), page.Skip)
	if err != nil {
		return nil, err
	}
	for i := range movies {
		movies[i] = movies[i].OnlyRatingBy(username)
	}
	return movies, nil
}

// AddRating appends rating and stores avg in one step. The append only
// happens while the movie holds no rating by the same user, so two racing
// adds cannot both land.
func (r *MoviesRepository) AddRating(ctx context.Context, ttID string, rating domain.Rating, avg int) error {
	_, err := r.findAndModify(ctx, ttID,
		func(m domain.Movie) error {
			if _, ok := m.RatingBy(rating.Username); ok {
				return domain.Conflict("Movie already rated.")
			}
			return nil
		},
		func(m *domain.Movie) {
			m.Ratings = append(m.Ratings, rating)
			m.AverageRating = avg
		},
	)
	return err
}

// SetRatingPoints changes username's points and returns the document as it
// was before the change.
func (r *MoviesRepository) SetRatingPoints(ctx context.Context, ttID, username string, points int) (domain.Movie, error) {
	return r.findAndModify(ctx, ttID, ratedBy(username), func(m *domain.Movie) {
		for i := range m.Ratings {
			if m.Ratings[i].Username == username {
				m.Ratings[i].Points = points
			}
		}
	})
}

// SetAverage overwrites only the derived average.
func (r *MoviesRepository) SetAverage(ctx context.Context, ttID string, avg int) error {
	const query = `UPDATE movies SET average_rating = $2, updated_at = now() WHERE tt_id = $1`
	tag, err := r.pool.Exec(ctx, query, ttID, avg)
	if err != nil {
		return fmt.Errorf("set average of %s: %w", ttID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PullRating removes username's rating and stores avg in one step.
func (r *MoviesRepository) PullRating(ctx context.Context, ttID, username string, avg int) error {
	_, err := r.findAndModify(ctx, ttID, ratedBy(username), func(m *domain.Movie) {
		kept := m.Ratings[:0]
		for _, rt := range m.Ratings {
			if rt.Username != username {
				kept = append(kept, rt)
			}
		}
		m.Ratings = kept
		m.AverageRating = avg
	})
	return err
}

// findAndModify locks the movie row, lets match veto the change, applies
// mutate to a copy and writes it back within one transaction. The returned
// movie is the state before mutate ran.
func (r *MoviesRepository) findAndModify(ctx context.Context, ttID string, match func(domain.Movie) error, mutate func(*domain.Movie)) (domain.Movie, error) {
	var prev domain.Movie
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM movies WHERE tt_id = $1 FOR UPDATE`, movieColumns)
		current, err := scanMovie(tx.QueryRow(ctx, query, ttID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if err := match(current); err != nil {
			return err
		}

		prev = current.Clone()
		next := current.Clone()
		mutate(&next)
		if next.Ratings == nil {
			next.Ratings = []domain.Rating{}
		}
		ratingsJSON, err := json.Marshal(next.Ratings)
		if err != nil {
			return fmt.Errorf("encode ratings of %s: %w", ttID, err)
		}

		const update = `UPDATE movies SET ratings = $2, average_rating = $3, updated_at = now() WHERE tt_id = $1`
		if _, err := tx.Exec(ctx, update, ttID, ratingsJSON, next.AverageRating); err != nil {
			return fmt.Errorf("update movie %s: %w", ttID, err)
		}
		return nil
	})
	if err != nil {
		return domain.Movie{}, err
	}
	return prev, nil
}

func ratedBy(username string) func(domain.Movie) error {
	return func(m domain.Movie) error {
		if _, ok := m.RatingBy(username); !ok {
			return ErrNotFound
		}
		return nil
	}
}
