package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, zap.NewNop())

	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), BookingEvent{
		Type:       BookingStatusChanged,
		BookingID:  "booking-1",
		UserID:     "user-1",
		CarID:      "car-1",
		Status:     "Confirmed",
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "booking-1", string(msg.Key))
	assert.Equal(t, "booking.status_changed", string(msg.Headers[0].Value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "booking.status_changed", got["type"])
	assert.Equal(t, "booking-1", got["booking_id"])
	assert.Equal(t, "Confirmed", got["status"])
	assert.Equal(t, "2026-01-01T09:00:00Z", got["occurred_at"])
}

func TestKafkaPublisher_StampsTimeAndWrapsErrors(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), BookingEvent{Type: BookingCreated, BookingID: "b"}))
	var got BookingEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &got))
	assert.False(t, got.OccurredAt.IsZero())

	w.err = errors.New("broker down")
	err := p.Publish(context.Background(), BookingEvent{Type: BookingDeleted, BookingID: "b"})
	assert.ErrorContains(t, err, "write booking.deleted event")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), BookingEvent{}))
	assert.NoError(t, p.Close())
}
