package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/parlay-calculator-service/internal/mocks"
	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// testKafkaConsumerSetup is a helper struct to hold test dependencies
type testKafkaConsumerSetup struct {
	mockEvaluator *mocks.MockEvaluator
	mockCache     *mocks.MockCache
	logger        zerolog.Logger
	ctrl          *gomock.Controller
}

// setupTestKafkaConsumer creates a test consumer with mocked dependencies
func setupTestKafkaConsumer(t *testing.T) *testKafkaConsumerSetup {
	ctrl := gomock.NewController(t)

	return &testKafkaConsumerSetup{
		mockEvaluator: mocks.NewMockEvaluator(ctrl),
		mockCache:     mocks.NewMockCache(ctrl),
		logger:        zerolog.Nop(),
		ctrl:          ctrl,
	}
}

// cleanup cleans up test resources
func (s *testKafkaConsumerSetup) cleanup() {
	s.ctrl.Finish()
}

func sampleKafkaMessage(batchID string, requestCount int) models.KafkaEvaluationMessage {
	requests := make([]models.EvaluationRequest, requestCount)
	for i := range requests {
		requests[i] = models.EvaluationRequest{
			RequestID: batchID + "-req",
			Stake:     "10",
			Legs: []models.Leg{
				{ID: 1, YourOdds: "-110", HasOpponentOdds: true, OpponentOdds: "-110"},
				{ID: 2, YourOdds: "+150"},
			},
			BookTotalOdds: "+260",
		}
	}

	return models.KafkaEvaluationMessage{
		Requests:  requests,
		Timestamp: time.Now(),
		BatchID:   batchID,
	}
}

// TestNewKafkaConsumer tests consumer creation
func TestNewKafkaConsumer(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	config := KafkaConsumerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "wager_requests",
		GroupID: "test-group",
	}

	consumer := NewKafkaConsumer(config, setup.mockEvaluator, setup.mockCache, setup.logger)

	assert.NotNil(t, consumer)
	assert.NotNil(t, consumer.reader)
	assert.NotNil(t, consumer.evaluator)
	assert.NotNil(t, consumer.cache)
	assert.Equal(t, config.Topic, consumer.reader.Config().Topic)
	assert.Equal(t, config.GroupID, consumer.reader.Config().GroupID)

	consumer.Close()
}

// TestMessageFormat tests the wire format round trip
func TestMessageFormat(t *testing.T) {
	kafkaMsg := sampleKafkaMessage("batch-123", 2)

	msgBytes, err := json.Marshal(kafkaMsg)
	require.NoError(t, err)
	assert.NotEmpty(t, msgBytes)

	var parsed models.KafkaEvaluationMessage
	err = json.Unmarshal(msgBytes, &parsed)
	assert.NoError(t, err)
	assert.Equal(t, kafkaMsg.BatchID, parsed.BatchID)
	assert.Equal(t, len(kafkaMsg.Requests), len(parsed.Requests))
	assert.Equal(t, kafkaMsg.Requests[0].Stake, parsed.Requests[0].Stake)
	assert.Equal(t, kafkaMsg.Requests[0].Legs, parsed.Requests[0].Legs)
}

// TestMessageFormat_EmptyBatch tests an empty batch message
func TestMessageFormat_EmptyBatch(t *testing.T) {
	kafkaMsg := models.KafkaEvaluationMessage{
		Requests:  []models.EvaluationRequest{},
		Timestamp: time.Now(),
		BatchID:   "batch-empty",
	}

	msgBytes, err := json.Marshal(kafkaMsg)
	require.NoError(t, err)

	var parsed models.KafkaEvaluationMessage
	err = json.Unmarshal(msgBytes, &parsed)
	assert.NoError(t, err)
	assert.Equal(t, kafkaMsg.BatchID, parsed.BatchID)
	assert.Equal(t, 0, len(parsed.Requests))
}

// TestKafkaConsumerConfig tests different configurations
func TestKafkaConsumerConfig(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	tests := []struct {
		name   string
		config KafkaConsumerConfig
	}{
		{
			name: "Single broker",
			config: KafkaConsumerConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "test-topic",
				GroupID: "test-group",
			},
		},
		{
			name: "Multiple brokers",
			config: KafkaConsumerConfig{
				Brokers: []string{"broker1:9092", "broker2:9092", "broker3:9092"},
				Topic:   "test-topic",
				GroupID: "test-group",
			},
		},
		{
			name: "Different topic",
			config: KafkaConsumerConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "wager_requests_v2",
				GroupID: "test-group",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := NewKafkaConsumer(tt.config, setup.mockEvaluator, setup.mockCache, setup.logger)

			assert.NotNil(t, consumer)
			assert.Equal(t, tt.config.Topic, consumer.reader.Config().Topic)
			assert.Equal(t, tt.config.GroupID, consumer.reader.Config().GroupID)
			assert.Equal(t, tt.config.Brokers, consumer.reader.Config().Brokers)

			consumer.Close()
		})
	}
}

// TestKafkaConsumer_Close tests consumer closing
func TestKafkaConsumer_Close(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	config := KafkaConsumerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "wager_requests",
		GroupID: "test-group",
	}

	consumer := NewKafkaConsumer(config, setup.mockEvaluator, setup.mockCache, setup.logger)

	err := consumer.Close()

	assert.NoError(t, err)
}

// TestKafkaConsumer_ContextCancellation tests context cancellation handling
func TestKafkaConsumer_ContextCancellation(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	config := KafkaConsumerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "wager_requests",
		GroupID: "test-group",
	}

	consumer := NewKafkaConsumer(config, setup.mockEvaluator, setup.mockCache, setup.logger)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		done <- consumer.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		// Consumer should stop without error on context cancellation
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Consumer did not stop within timeout")
	}
}

// TestKafkaConsumer_Configuration tests reader configuration
func TestKafkaConsumer_Configuration(t *testing.T) {
	setup := setupTestKafkaConsumer(t)
	defer setup.cleanup()

	config := KafkaConsumerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "wager_requests",
		GroupID: "test-group",
	}

	consumer := NewKafkaConsumer(config, setup.mockEvaluator, setup.mockCache, setup.logger)
	defer consumer.Close()

	readerConfig := consumer.reader.Config()

	assert.Equal(t, config.Brokers, readerConfig.Brokers)
	assert.Equal(t, config.Topic, readerConfig.Topic)
	assert.Equal(t, config.GroupID, readerConfig.GroupID)
	assert.Equal(t, 1000, readerConfig.MinBytes)     // 1KB
	assert.Equal(t, 10000000, readerConfig.MaxBytes) // 10MB
	assert.Equal(t, 1*time.Second, readerConfig.CommitInterval)
}
