// Package events publishes rating change notifications for downstream
// consumers. Publishing is best effort: the rating engine logs failures and
// never fails a request because of them.
package events

import (
	"context"
	"time"
)

// Type names a rating change.
type Type string

const (
	RatingAdded   Type = "rating.added"
	RatingUpdated Type = "rating.updated"
	RatingDeleted Type = "rating.deleted"
)

// RatingEvent describes one committed rating mutation.
type RatingEvent struct {
	Type          Type      `json:"type"`
	MovieID       string    `json:"tt_id"`
	Username      string    `json:"username"`
	Points        int       `json:"points,omitempty"`
	AverageRating int       `json:"average_rating"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers rating events.
type Publisher interface {
	Publish(ctx context.Context, event RatingEvent) error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, RatingEvent) error { return nil }
