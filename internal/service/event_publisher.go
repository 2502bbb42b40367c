package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/domain"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/kafka"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/logger"
)

// EventType identifies an auth event
type EventType string

const (
	EventUserRegistered     EventType = "user.registered"
	EventUserLoggedIn       EventType = "user.logged_in"
	EventUserLoggedOut      EventType = "user.logged_out"
	EventUserProfileUpdated EventType = "user.profile_updated"
)

// AuthEvent is the wire shape of an auth event. The notification pipeline
// consumes these off the auth-events topic.
type AuthEvent struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// EventPublisher publishes auth events. Publishing is best effort:
// implementations log failures and never return them to auth flows.
type EventPublisher interface {
	Publish(ctx context.Context, eventType EventType, user *domain.User)
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
	source   string
	log      *logger.Logger
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
	Source   string
	Logger   *logger.Logger
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "auth-events"
	}
	source := cfg.Source
	if source == "" {
		source = "auth-service"
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      cfg.ClientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		source:   source,
		log:      log,
	}, nil
}

// Publish emits an auth event. Failures are logged and swallowed.
func (p *KafkaEventPublisher) Publish(ctx context.Context, eventType EventType, user *domain.User) {
	event := AuthEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		Timestamp: time.Now().UTC(),
		Source:    p.source,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal auth event",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
		return
	}

	headers := map[string]string{
		"event_type": string(eventType),
		"source":     p.source,
	}

	// Events are keyed by user so a consumer sees one user's events in order.
	key := fmt.Sprintf("%d", user.ID)
	if err := p.producer.Publish(ctx, p.topic, key, payload, headers); err != nil {
		p.log.Warn("failed to publish auth event",
			zap.String("event_type", string(eventType)),
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}
}

// Close closes the underlying producer
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}
