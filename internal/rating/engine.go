// Package rating adds, updates and deletes the ratings embedded in a movie
// while keeping the movie's average_rating in step with them.
package rating

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Clark-Hu/notflix/internal/domain"
	"github.com/Clark-Hu/notflix/internal/events"
	"github.com/Clark-Hu/notflix/internal/metrics"
)

const (
	msgMovieNotFound = "Movie not found."
	msgNotYetRated   = "Movie not found/yet rated."
	msgAlreadyRated  = "Movie already rated."
)

// Operation names used in logs, metrics and events.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Store is the movie document store the engine mutates. Every method acts on
// a single movie atomically.
type Store interface {
	// FindMovie returns the movie with all ratings, or domain.ErrNotFound.
	FindMovie(ctx context.Context, ttID string) (domain.Movie, error)
	// FindRatedBy returns the movie with all ratings when username rated it,
	// or domain.ErrNotFound.
	FindRatedBy(ctx context.Context, ttID, username string) (domain.Movie, error)
	// AddRating appends rating and sets the average. It fails with
	// domain.ErrConflict when username already rated the movie.
	AddRating(ctx context.Context, ttID string, rating domain.Rating, avg int) error
	// SetRatingPoints sets username's points and returns the movie as it was
	// before the write.
	SetRatingPoints(ctx context.Context, ttID, username string, points int) (domain.Movie, error)
	SetAverage(ctx context.Context, ttID string, avg int) error
	// PullRating removes username's rating and sets the average.
	PullRating(ctx context.Context, ttID, username string, avg int) error
}

// Options configures an Engine. Nil fields fall back to no-op defaults.
type Options struct {
	Logger    *log.Logger
	Publisher events.Publisher
	Metrics   *metrics.Recorder
}

// Engine applies rating mutations to a Store.
type Engine struct {
	store     Store
	logger    *log.Logger
	publisher events.Publisher
	metrics   *metrics.Recorder
	now       func() time.Time
}

func NewEngine(store Store, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	return &Engine{
		store:     store,
		logger:    opts.Logger,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		now:       time.Now,
	}
}

// Add records username's first rating of a movie.
func (e *Engine) Add(ctx context.Context, ttID, username string, points int) (rating domain.Rating, err error) {
	defer func() { e.metrics.RatingMutation(OpAdd, outcome(err)) }()

	if err := domain.ValidatePoints(points); err != nil {
		return domain.Rating{}, err
	}

	_, err = e.store.FindRatedBy(ctx, ttID, username)
	switch {
	case err == nil:
		e.logger.Printf("rating: %s already rated %s", username, ttID)
		return domain.Rating{}, domain.Conflict(msgAlreadyRated)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Rating{}, domain.StoreFailure(err)
	}

	movie, err := e.store.FindMovie(ctx, ttID)
	if err != nil {
		return domain.Rating{}, notFoundAs(err, msgMovieNotFound)
	}

	rating = domain.Rating{Username: username, Points: points}
	avg := domain.AverageWith(movie.Ratings, username, points)
	if err := e.store.AddRating(ctx, ttID, rating, avg); err != nil {
		return domain.Rating{}, notFoundAs(err, msgMovieNotFound)
	}

	e.logger.Printf("rating: %s rated %s with %d points, average %d", username, ttID, points, avg)
	e.publish(ctx, events.RatingAdded, ttID, username, points, avg)
	return rating, nil
}

// Update changes the points of an existing rating. The points are written
// first and the average second; if the average write fails the points are
// put back and the average write's error is returned.
func (e *Engine) Update(ctx context.Context, ttID, username string, points int) (rating domain.Rating, err error) {
	defer func() { e.metrics.RatingMutation(OpUpdate, outcome(err)) }()

	if err := domain.ValidatePoints(points); err != nil {
		return domain.Rating{}, err
	}

	var (
		previous domain.Movie
		old      domain.Rating
		avg      int
	)
	steps := []step{
		{
			name: "set points",
			do: func(ctx context.Context) error {
				prev, err := e.store.SetRatingPoints(ctx, ttID, username, points)
				if err != nil {
					return notFoundAs(err, msgNotYetRated)
				}
				previous = prev
				old, _ = prev.RatingBy(username)
				return nil
			},
			revert: func(ctx context.Context) error {
				_, err := e.store.SetRatingPoints(ctx, ttID, username, old.Points)
				return err
			},
		},
		{
			name: "set average",
			do: func(ctx context.Context) error {
				avg = domain.AverageWith(previous.Ratings, username, points)
				if err := e.store.SetAverage(ctx, ttID, avg); err != nil {
					return domain.StoreFailure(err)
				}
				return nil
			},
		},
	}
	if err := e.run(ctx, OpUpdate, steps); err != nil {
		return domain.Rating{}, err
	}

	e.logger.Printf("rating: %s changed %s from %d to %d points, average %d", username, ttID, old.Points, points, avg)
	e.publish(ctx, events.RatingUpdated, ttID, username, points, avg)
	return domain.Rating{Username: username, Points: points}, nil
}

// Delete removes username's rating and recomputes the average over the
// ratings that remain.
func (e *Engine) Delete(ctx context.Context, ttID, username string) (err error) {
	defer func() { e.metrics.RatingMutation(OpDelete, outcome(err)) }()

	movie, err := e.store.FindRatedBy(ctx, ttID, username)
	if err != nil {
		return notFoundAs(err, msgNotYetRated)
	}

	avg := domain.AverageWithout(movie.Ratings, username)
	if err := e.store.PullRating(ctx, ttID, username, avg); err != nil {
		return notFoundAs(err, msgNotYetRated)
	}

	e.logger.Printf("rating: %s removed their rating of %s, average %d", username, ttID, avg)
	e.publish(ctx, events.RatingDeleted, ttID, username, 0, avg)
	return nil
}

func (e *Engine) publish(ctx context.Context, typ events.Type, ttID, username string, points, avg int) {
	event := events.RatingEvent{
		Type:          typ,
		MovieID:       ttID,
		Username:      username,
		Points:        points,
		AverageRating: avg,
		OccurredAt:    e.now().UTC(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Printf("rating: publish %s for %s: %v", typ, ttID, err)
	}
}

// notFoundAs gives a bare not-found error its client message and wraps any
// other unclassified failure as a store error.
func notFoundAs(err error, msg string) error {
	var de *domain.Error
	if errors.Is(err, domain.ErrNotFound) && !errors.As(err, &de) {
		return domain.NotFound(msg)
	}
	return domain.StoreFailure(err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrStore):
		return "store_error"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "store_error"
	}
}
