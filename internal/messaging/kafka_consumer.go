package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
	"github.com/cypherlabdev/parlay-calculator-service/internal/service"
)

// KafkaConsumer consumes wager evaluation requests from Kafka and
// evaluates them through the calculator
type KafkaConsumer struct {
	reader    *kafka.Reader
	evaluator service.Evaluator
	cache     service.Cache
	logger    zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "wager_requests"
	GroupID string   // e.g., "parlay-calculator"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	evaluator service.Evaluator,
	cache service.Cache,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:    reader,
		evaluator: evaluator,
		cache:     cache,
		logger:    logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return c.reader.Close()

		default:
			// Read message
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if err == context.Canceled {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			// Process message
			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process message")
				// Don't commit if processing failed
				continue
			}

			// Commit message
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage processes a single Kafka message
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	// Parse message
	var kafkaMsg models.KafkaEvaluationMessage
	if err := json.Unmarshal(msg.Value, &kafkaMsg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	c.logger.Debug().
		Int("request_count", len(kafkaMsg.Requests)).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("processing evaluation request batch")

	// Convert to pointers
	requests := make([]*models.EvaluationRequest, len(kafkaMsg.Requests))
	for i := range kafkaMsg.Requests {
		requests[i] = &kafkaMsg.Requests[i]
	}

	// Evaluate wagers
	results, err := c.evaluator.BatchEvaluate(requests)
	if err != nil {
		return fmt.Errorf("failed to evaluate requests: %w", err)
	}

	// Cache evaluation results in Redis
	if err := c.cache.SetResultBatch(ctx, results); err != nil {
		return fmt.Errorf("failed to cache results: %w", err)
	}

	c.logger.Info().
		Int("input_count", len(requests)).
		Int("output_count", len(results)).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("processed and cached evaluation results")

	return nil
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
