package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/tmorgan842/position-tracker/internal/models"
)

// PredictionRepository defines the prediction write operations the consumer needs
type PredictionRepository interface {
	CreatePrediction(p *models.Prediction) error
}

// Consumer ingests forecast events published by the ML pipeline and appends
// them to the prediction store. Records are append-only: the consumer never
// updates an existing row.
type Consumer struct {
	reader *kafka.Reader
	repo   PredictionRepository
	log    zerolog.Logger
}

// NewConsumer creates a new Kafka consumer for prediction events
func NewConsumer(brokers []string, topic, groupID string, repo PredictionRepository, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		log:    log.With().Str("component", "prediction-consumer").Logger(),
	}
}

// Start begins consuming messages until the context is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info().Str("topic", c.reader.Config().Topic).Msg("Starting prediction consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("Prediction consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // context cancelled, normal shutdown
				}
				c.log.Error().Err(err).Msg("Error reading message")
				continue
			}

			if err := c.processMessage(msg); err != nil {
				c.log.Error().Err(err).Str("key", string(msg.Key)).Msg("Error processing message")
				// continue with the next message
			}
		}
	}
}

func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.PredictionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal prediction event: %w", err)
	}

	if event.EventType != models.EventPredictionReady {
		c.log.Debug().Str("event_type", event.EventType).Msg("Ignoring event")
		return nil
	}

	prediction := event.Prediction
	prediction.Symbol = strings.ToUpper(strings.TrimSpace(prediction.Symbol))
	if prediction.Symbol == "" {
		return fmt.Errorf("prediction event without symbol")
	}

	if err := c.repo.CreatePrediction(&prediction); err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	c.log.Info().
		Str("symbol", prediction.Symbol).
		Str("ensemble_price", prediction.Ensemble.Price.String()).
		Msg("Saved prediction")

	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
