package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

func TestKafkaEventPublisherPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaEventPublisher(w, 8)
	p.Start()

	err := p.Publish(context.Background(), EventTypeOrderRecorded, "cs_test_1", OrderRecordedPayload{
		SessionID: "cs_test_1",
		Slug:      "retro-mountain-01",
		Amount:    "150.00",
		Currency:  "EUR",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	assert.True(t, w.closed)
	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "cs_test_1", string(msg.Key))
	assert.Equal(t, EventTypeOrderRecorded, headerValue(msg, "x-event-type"))
	assert.Equal(t, "1", headerValue(msg, "x-event-version"))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, EventTypeOrderRecorded, env.EventType)
	assert.Equal(t, "legacy-storefront-api", env.Producer)
	assert.Equal(t, "cs_test_1", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)

	var payload OrderRecordedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "150.00", payload.Amount)
}

func TestKafkaEventPublisherAfterClose(t *testing.T) {
	p := newKafkaEventPublisher(&fakeWriter{}, 1)
	p.Start()
	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "Close is idempotent")

	err := p.Publish(context.Background(), EventTypeLegacyClaimed, "1", LegacyClaimedPayload{RecordID: 1})
	assert.Error(t, err)
}

func TestKafkaEventPublisherFullInbox(t *testing.T) {
	// Not started, so nothing drains the inbox
	p := newKafkaEventPublisher(&fakeWriter{}, 1)

	require.NoError(t, p.Publish(context.Background(), EventTypeLegacyClaimed, "1", LegacyClaimedPayload{RecordID: 1}))
	assert.Error(t, p.Publish(context.Background(), EventTypeLegacyClaimed, "2", LegacyClaimedPayload{RecordID: 2}))
}

func TestKafkaEventPublisherWriteErrorsAreSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaEventPublisher(w, 4)
	p.Start()

	assert.NoError(t, p.Publish(context.Background(), EventTypeLegacyClaimed, "1", LegacyClaimedPayload{RecordID: 1}))
	assert.NoError(t, p.Close())
	assert.Empty(t, w.messages)
}

func TestNewEnvelopeRejectsUnencodablePayload(t *testing.T) {
	_, err := NewEnvelope(EventTypeLegacyClaimed, "1", make(chan int))
	assert.Error(t, err)
}
