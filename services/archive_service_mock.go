package services

import (
	"context"
	"fmt"
	"sync"
)

// MockEventArchive is a mock implementation of EventArchive for testing
type MockEventArchive struct {
	objects map[string][]byte // object key to payload
	err     error
	mu      sync.RWMutex
}

// NewMockEventArchive creates a new mock archive
func NewMockEventArchive() *MockEventArchive {
	return &MockEventArchive{objects: make(map[string][]byte)}
}

// FailWith makes Store return err
func (m *MockEventArchive) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Store simulates uploading a payload
func (m *MockEventArchive) Store(ctx context.Context, eventID string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	key := ArchiveKey(eventID)
	m.objects[key] = append([]byte(nil), payload...)
	return key, nil
}

// PresignedURL simulates generating a presigned URL
func (m *MockEventArchive) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("object not found in mock archive: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.eu-west-3.amazonaws.com/%s?mock=true", key), nil
}

// Object returns a stored payload
func (m *MockEventArchive) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len returns the number of stored payloads
func (m *MockEventArchive) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
