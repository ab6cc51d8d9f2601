package services

import (
	"context"
	"strings"
	"sync"
)

// MockGeocoder is a mock implementation of Geocoder for testing
type MockGeocoder struct {
	points map[string]GeoPoint
	err    error
	calls  int
	mu     sync.RWMutex
}

// NewMockGeocoder creates a mock geocoder that knows a few cities
func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{
		points: map[string]GeoPoint{
			"paris, france": {Lat: 48.8566, Lng: 2.3522, DisplayName: "Paris, Île-de-France, France"},
			"bari, italy":   {Lat: 41.1171, Lng: 16.8719, DisplayName: "Bari, Puglia, Italia"},
		},
	}
}

// Add registers a query result
func (m *MockGeocoder) Add(query string, point GeoPoint) {
	m.mu.Lock()
	m.points[strings.ToLower(strings.TrimSpace(query))] = point
	m.mu.Unlock()
}

// FailWith makes every subsequent lookup return err; nil restores normal behavior
func (m *MockGeocoder) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Calls returns how many lookups were made
func (m *MockGeocoder) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Geocode returns the registered point or ErrCityNotFound
func (m *MockGeocoder) Geocode(ctx context.Context, query string) (*GeoPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	point, ok := m.points[strings.ToLower(strings.TrimSpace(query))]
	if !ok {
		return nil, ErrCityNotFound
	}
	return &point, nil
}
