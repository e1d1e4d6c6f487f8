package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher sends events as JSON messages to a durable queue on the
// default exchange.
type AMQPPublisher struct {
	conn   *amqp.Connection
	queue  string
	logger *log.Logger

	mu sync.Mutex
	ch *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares queue.
func NewAMQPPublisher(url, queue string, logger *log.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = log.Default()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	logger.Printf("events: publishing rating events to queue %q", queue)
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue, logger: logger}, nil
}

// Publish encodes event and sends it as a persistent message.
func (p *AMQPPublisher) Publish(ctx context.Context, event RatingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close shuts the channel and connection down.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil && err != amqp.ErrClosed {
		p.logger.Printf("events: close channel: %v", err)
	}
	return p.conn.Close()
}
