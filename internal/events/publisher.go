package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	EventSource  = "paper-portal"
	EventVersion = "1.0"
)

// Topics published by the portal.
const (
	TopicUserRegistered     = "user.registered"
	TopicUserVerified       = "user.verified"
	TopicPaperSubmitted     = "paper.submitted"
	TopicPaperStatusChanged = "paper.status_changed"
)

// Event is the envelope for every message the portal publishes.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh ID and timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ===== EVENT PAYLOADS =====

type UserRegisteredEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type UserVerifiedEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type PaperSubmittedEvent struct {
	PaperID     string   `json:"paper_id"`
	Title       string   `json:"title"`
	SubmittedBy string   `json:"submitted_by"`
	ReviewerID  string   `json:"reviewer_id"`
	AdvisorIDs  []string `json:"advisor_ids"`
}

type PaperStatusChangedEvent struct {
	PaperID   string `json:"paper_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ChangedBy string `json:"changed_by"`
}

// EventPublisher publishes portal events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close() error
}

// ===== GO-CHANNEL PUBLISHER (development) =====

type goChannelPublisher struct {
	pubsub *gochannel.GoChannel
}

// NewGoChannelPublisher creates an in-process publisher for development and
// single-node deployments.
func NewGoChannelPublisher(logger *slog.Logger) EventPublisher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &goChannelPublisher{pubsub: pubsub}
}

func (p *goChannelPublisher) Publish(ctx context.Context, topic string, event Event) error {
	msg, err := marshalEvent(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	return p.pubsub.Publish(topic, msg)
}

func (p *goChannelPublisher) Close() error {
	return p.pubsub.Close()
}

// ===== KAFKA PUBLISHER (production) =====

type kafkaPublisher struct {
	publisher message.Publisher
}

// NewKafkaPublisher creates a Kafka-backed publisher.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &kafkaPublisher{publisher: publisher}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, event Event) error {
	msg, err := marshalEvent(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	return p.publisher.Publish(topic, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.publisher.Close()
}

func marshalEvent(event Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)

	return msg, nil
}

// ===== MOCK PUBLISHER (tests) =====

// MockEventPublisher records published events for test assertions.
type MockEventPublisher struct {
	logger *slog.Logger

	mu     sync.Mutex
	events []Event
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	m.logger.Debug("Mock event published", "topic", topic, "type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of all recorded events.
func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// ClearEvents discards all recorded events.
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = nil
}
