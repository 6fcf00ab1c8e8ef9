package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/pkg/logger"
	"stockdesk/pkg/metrics"
)

const metricsService = "console"

// messageReader - часть kafka.Reader, которой пользуется consumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer читает сигналы об изменении данных на сервере
// и перечитывает затронутые коллекции.
type KafkaConsumer struct {
	reader    messageReader
	refresher service.Refresher
	topic     string
	groupID   string
	poll      time.Duration // ожидание одного FetchMessage
	stopChan  chan struct{}
	doneChan  chan struct{}
}

func NewKafkaConsumer(brokers []string, topic, groupID string, refresher service.Refresher) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		StartOffset:    kafka.LastOffset, // старые сигналы не нужны: коллекции всё равно читаются целиком
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: time.Second,
	})

	return &KafkaConsumer{
		reader:    reader,
		refresher: refresher,
		topic:     topic,
		groupID:   groupID,
		poll:      10 * time.Second,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close Kafka reader")
	}
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, c.poll)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if readCtx.Err() == nil {
					metrics.RecordKafkaError(metricsService, c.topic, "fetch")
					logger.Warn().Err(err).Msg("Error fetching message")
					time.Sleep(time.Second)
				}
				continue
			}

			start := time.Now()
			if err := c.processMessage(ctx, message); err != nil {
				// offset не коммитим: сигнал придёт повторно
				metrics.RecordKafkaError(metricsService, c.topic, "process")
				logger.Warn().Err(err).Int64("offset", message.Offset).Msg("Error processing message")
				continue
			}
			metrics.RecordKafkaMessageConsumed(metricsService, c.topic, c.groupID, time.Since(start))

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				metrics.RecordKafkaError(metricsService, c.topic, "commit")
				logger.Warn().Err(err).Msg("Error committing message")
			}
		}
	}
}

// processMessage: сигнал с resource обновляет одну коллекцию, без него все.
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.RefreshEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal refresh event: %w", err)
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("resource", event.Resource).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received refresh event")

	if event.Resource == "" {
		if err := c.refresher.RefreshAll(ctx); err != nil {
			return fmt.Errorf("failed to refresh stores: %w", err)
		}
		return nil
	}

	err := c.refresher.Refresh(ctx, event.Resource)
	if errors.Is(err, service.ErrUnknownResource) {
		logger.Warn().Str("resource", event.Resource).Msg("Refresh event for unknown resource skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", event.Resource, err)
	}
	return nil
}
