// Package seed loads a movie catalogue from JSON into a movie store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Clark-Hu/notflix/internal/domain"
)

// Creator inserts a movie unless its tt_id already exists.
type Creator interface {
	Create(ctx context.Context, movie domain.Movie) (bool, error)
}

type movieEntry struct {
	TTID        string `json:"tt_id"`
	Title       string `json:"title"`
	PublishDate string `json:"publish_date"`
	Length      int    `json:"length"`
	Director    string `json:"director"`
	Description string `json:"description"`
}

// Decode reads a JSON array of movies. publish_date may be a plain date or
// an RFC 3339 timestamp.
func Decode(r io.Reader) ([]domain.Movie, error) {
	var entries []movieEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	movies := make([]domain.Movie, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.TTID) == "" || strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("entry %d: tt_id and title are required", i)
		}
		published, err := parseDate(e.PublishDate)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.TTID, err)
		}
		movies = append(movies, domain.Movie{
			TTID:        strings.TrimSpace(e.TTID),
			Title:       strings.TrimSpace(e.Title),
			PublishDate: published,
			Length:      e.Length,
			Director:    strings.TrimSpace(e.Director),
			Description: strings.TrimSpace(e.Description),
		})
	}
	return movies, nil
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("publish_date is required")
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid publish_date %q", v)
	}
	return t.UTC(), nil
}

// Apply inserts movies and reports how many were new.
func Apply(ctx context.Context, store Creator, movies []domain.Movie, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.Default()
	}
	inserted := 0
	for _, m := range movies {
		created, err := store.Create(ctx, m)
		if err != nil {
			return inserted, fmt.Errorf("insert %s: %w", m.TTID, err)
		}
		if created {
			inserted++
		}
	}
	logger.Printf("seed: %d of %d movies inserted", inserted, len(movies))
	return inserted, nil
}

// File decodes the catalogue at path and applies it.
func File(ctx context.Context, store Creator, path string, logger *log.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()

	movies, err := Decode(f)
	if err != nil {
		return 0, err
	}
	return Apply(ctx, store, movies, logger)
}
