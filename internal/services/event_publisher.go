// internal/services/event_publisher.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shophub-backend/internal/models"
)

// OrderEvent is published after every committed order status change.
type OrderEvent struct {
	OrderID    uuid.UUID          `json:"order_id"`
	UserID     uuid.UUID          `json:"user_id"`
	Status     models.OrderStatus `json:"status"`
	Previous   models.OrderStatus `json:"previous_status,omitempty"`
	Total      float64            `json:"total"`
	Source     string             `json:"source"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaEventPublisher struct {
	writer messageWriter
}

func NewKafkaEventPublisher(brokers []string, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishOrderEvent keys messages by order id so one order's events stay ordered.
func (p *KafkaEventPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order." + string(event.Status))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write order event: %w", err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// LogEventPublisher is used when no broker is configured.
type LogEventPublisher struct{}

func (LogEventPublisher) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	logrus.WithFields(logrus.Fields{
		"order_id": event.OrderID,
		"status":   event.Status,
		"source":   event.Source,
	}).Debug("Order event (no broker configured)")
	return nil
}

func (LogEventPublisher) Close() error { return nil }
