package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tmorgan842/position-tracker/internal/models"
)

// Producer publishes position and watchlist lifecycle events
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishPositionOpened publishes a position opened event
func (p *Producer) PublishPositionOpened(ctx context.Context, position *models.Position) error {
	return p.publishPosition(ctx, models.EventPositionOpened, position)
}

// PublishPositionClosed publishes a position closed event
func (p *Producer) PublishPositionClosed(ctx context.Context, position *models.Position) error {
	return p.publishPosition(ctx, models.EventPositionClosed, position)
}

// PublishPositionUpdated publishes a position updated event
func (p *Producer) PublishPositionUpdated(ctx context.Context, position *models.Position) error {
	return p.publishPosition(ctx, models.EventPositionUpdated, position)
}

// PublishWatchlistAdded publishes a watchlist added event
func (p *Producer) PublishWatchlistAdded(ctx context.Context, entry *models.WatchlistEntry) error {
	event := models.WatchlistEvent{
		EventType: models.EventWatchlistAdded,
		Ticker:    entry.Ticker,
		Entry:     entry,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, entry.Ticker, event)
}

// PublishWatchlistRemoved publishes a watchlist removed event
func (p *Producer) PublishWatchlistRemoved(ctx context.Context, ticker string) error {
	event := models.WatchlistEvent{
		EventType: models.EventWatchlistRemoved,
		Ticker:    ticker,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, ticker, event)
}

func (p *Producer) publishPosition(ctx context.Context, eventType string, position *models.Position) error {
	event := models.PositionEvent{
		EventType: eventType,
		Symbol:    position.Symbol,
		Position:  position,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, position.Symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
