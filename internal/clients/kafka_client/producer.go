package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/brandpulse/internal/models"
)

// InsightsPublisher emits an InsightsEvent keyed by brand after each analysis
type InsightsPublisher struct {
	producer *kafka.Producer
	topic    string
	now      func() time.Time
}

func NewInsightsPublisher(cfg KafkaConfig) (*InsightsPublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Broker,
		"security.protocol":  "PLAINTEXT",
		"enable.idempotence": true,
		"acks":               "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &InsightsPublisher{producer: p, topic: cfg.topic(), now: time.Now}, nil
}

func (p *InsightsPublisher) Name() string { return "kafka" }

// Publish sends one event and waits for its delivery report
func (p *InsightsPublisher) Publish(ctx context.Context, brandName, brandKey string, _ []models.ScoredItem, insights models.Insights) error {
	payload, err := json.Marshal(models.InsightsEvent{
		BrandName:   brandName,
		BrandKey:    brandKey,
		GeneratedAt: p.now().UTC(),
		Insights:    insights,
	})
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to marshal insights event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(brandKey),
		Value:          payload,
	}

	deliveryChan := make(chan kafka.Event, 1)
	for i := 0; i < MAX_RETRIES; i++ {
		err = p.producer.Produce(msg, deliveryChan)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1), slog.String("error", err.Error()))
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce insights event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DELIVERY_TIMEOUT)
	defer cancel()

	select {
	case <-ctx.Done():
		return fmt.Errorf("[KafkaClient] delivery report not received: %w", ctx.Err())
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] unexpected delivery event %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaClient] delivery failed: %w", m.TopicPartition.Error)
		}
	}

	slog.Info("[KafkaClient] Published brand insights",
		slog.String("topic", p.topic),
		slog.String("brand_key", brandKey))
	return nil
}

func (p *InsightsPublisher) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := p.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
