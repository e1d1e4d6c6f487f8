package events

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"
)

// TestAMQPPublisherSmoke runs against a real broker when AMQP_URL is set.
func TestAMQPPublisherSmoke(t *testing.T) {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		t.Skip("AMQP_URL not provided")
	}
	pub, err := NewAMQPPublisher(url, "rating-events-test", log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = pub.Publish(ctx, RatingEvent{
		Type:          RatingAdded,
		MovieID:       "tt0000001",
		Username:      "smoke",
		Points:        7,
		AverageRating: 7,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), RatingEvent{Type: RatingDeleted}); err != nil {
		t.Fatalf("Nop.Publish returned %v", err)
	}
}
