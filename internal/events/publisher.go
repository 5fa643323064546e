// Package events publishes finished-trip notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pkordes/taximeter/internal/domain"
)

const (
	// RoutingKeyTripFinished is the topic routing key of TripFinished messages.
	RoutingKeyTripFinished = "trip.finished"

	publishTimeout = 3 * time.Second
)

// TripFinished is the JSON body published for every finished trip.
type TripFinished struct {
	ReceiptID       string    `json:"receipt_id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	StoppedSeconds  float64   `json:"stopped_seconds"`
	MovingSeconds   float64   `json:"moving_seconds"`
	Total           float64   `json:"total"`
	FinalState      string    `json:"final_state"`
}

// NewTripFinished maps a receipt onto the wire message.
func NewTripFinished(r domain.Receipt) TripFinished {
	return TripFinished{
		ReceiptID:       r.ID.String(),
		StartedAt:       r.StartedAt.UTC(),
		FinishedAt:      r.FinishedAt.UTC(),
		DurationSeconds: r.Duration.Seconds(),
		StoppedSeconds:  r.StoppedFor.Seconds(),
		MovingSeconds:   r.MovingFor.Seconds(),
		Total:           r.Total,
		FinalState:      string(r.FinalState),
	}
}

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends TripFinished messages to a durable topic exchange.
// It is safe for concurrent use.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// Dial connects to the broker at url and declares exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events.Dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events.Dial: open channel: %w", err)
	}
	p, err := newPublisher(ch, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events.Dial: %w", err)
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange}, nil
}

// PublishTripFinished publishes r as a persistent JSON message.
func (p *Publisher) PublishTripFinished(ctx context.Context, r domain.Receipt) error {
	body, err := json.Marshal(NewTripFinished(r))
	if err != nil {
		return fmt.Errorf("events.Publisher.PublishTripFinished: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyTripFinished, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    r.ID.String(),
		Timestamp:    r.FinishedAt,
		Type:         RoutingKeyTripFinished,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("events.Publisher.PublishTripFinished: %w", err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		return fmt.Errorf("events.Publisher.Close: channel: %w", err)
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("events.Publisher.Close: connection: %w", err)
		}
	}
	return nil
}
