package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventTypeOrderRecorded = "OrderRecorded"
	EventTypeLegacyClaimed = "LegacyClaimed"

	eventVersion  = 1
	eventProducer = "legacy-storefront-api"
)

// Envelope wraps every domain event published to the bus
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderRecordedPayload is published once per newly recorded order
type OrderRecordedPayload struct {
	SessionID string `json:"session_id"`
	Slug      string `json:"slug"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email,omitempty"`
}

// LegacyClaimedPayload is published when a code is claimed. The code itself
// is not included.
type LegacyClaimedPayload struct {
	RecordID uint    `json:"record_id"`
	Slug     *string `json:"slug"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// EventPublisher emits domain events. Publishing is best-effort and never
// blocks the request path.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	Close() error
}

// NewEnvelope builds an envelope around payload
func NewEnvelope(eventType, correlationID string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  eventVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      eventProducer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher queues events on a buffered inbox drained by a single
// writer goroutine
type KafkaEventPublisher struct {
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewKafkaEventPublisher creates a publisher for topic on brokers
func NewKafkaEventPublisher(brokers []string, topic string, buf int) *KafkaEventPublisher {
	return newKafkaEventPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}, buf)
}

func newKafkaEventPublisher(w messageWriter, buf int) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start launches the writer loop. It exits once Close drains the inbox.
func (p *KafkaEventPublisher) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				log.Printf("[Events] Failed to write %s (key %s): %v", headerValue(m, "x-event-type"), m.Key, err)
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			log.Printf("[Events] Failed to close writer: %v", err)
		}
	}()
}

// Publish enqueues an event. A full inbox drops the event with a log line.
func (p *KafkaEventPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	env, err := NewEnvelope(eventType, key, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte(fmt.Sprint(eventVersion))},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher closed")
	}

	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		log.Printf("[Events] Inbox full, dropping %s for %s", eventType, key)
		return fmt.Errorf("event inbox full")
	}
}

// Close flushes queued events and waits for the writer loop to exit
func (p *KafkaEventPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.closeCh
	return nil
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// NopEventPublisher discards events when no broker is configured
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, string, string, interface{}) error {
	return nil
}

func (NopEventPublisher) Close() error {
	return nil
}
