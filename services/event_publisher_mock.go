package services

import (
	"context"
	"sync"
)

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	Type    string
	Key     string
	Payload interface{}
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	events []PublishedEvent
	err    error
	mu     sync.RWMutex
}

// NewMockEventPublisher creates a new mock publisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// FailWith makes Publish return err
func (m *MockEventPublisher) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Publish records the event
func (m *MockEventPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, PublishedEvent{Type: eventType, Key: key, Payload: payload})
	return nil
}

// Close is a no-op
func (m *MockEventPublisher) Close() error { return nil }

// Events returns a copy of the captured events
func (m *MockEventPublisher) Events() []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOfType returns captured events with the given type
func (m *MockEventPublisher) EventsOfType(eventType string) []PublishedEvent {
	var out []PublishedEvent
	for _, e := range m.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
