package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMockEventPublisher(t *testing.T) {
	pub := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	event := NewTrainingAssignedEvent(7, []uint{1, 2}, 1, time.Now())
	require.NoError(t, pub.PublishTrainingEvent(ctx, event))

	published := pub.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, EventTrainingAssigned, published[0].Type)
	assert.Equal(t, "training-service", published[0].Source)

	data, ok := published[0].Data.(TrainingAssignedEvent)
	require.True(t, ok)
	assert.Equal(t, uint(7), data.UserID)
	assert.Equal(t, []uint{1, 2}, data.TrainingIDs)

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())

	pub.Err = errors.New("broker down")
	assert.Error(t, pub.PublishTrainingEvent(ctx, event))
	assert.Empty(t, pub.GetPublishedEvents())
}

func TestNewTrainingEvents_UniqueIDs(t *testing.T) {
	now := time.Now()
	a := NewTrainingStartedEvent(1, 2, "CS101", "Intro", now)
	b := NewTrainingCompletedEvent(1, 2, "CS101", "Intro", now, now)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, EventTrainingStarted, a.Type)
	assert.Equal(t, EventTrainingCompleted, b.Type)
}

func TestNewMessage(t *testing.T) {
	event := NewTrainingStartedEvent(3, 4, "CS201", "Data Structures", time.Now())

	msg, err := NewMessage(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "training.started", msg.Metadata.Get("event_type"))
	assert.Equal(t, "training-service", msg.Metadata.Get("source"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	assert.Equal(t, "training.started", decoded["type"])
	payload := decoded["data"].(map[string]interface{})
	assert.Equal(t, "CS201", payload["training_code"])
}

func TestNoopEventPublisher(t *testing.T) {
	pub := NewNoopEventPublisher(testLogger())
	assert.NoError(t, pub.PublishTrainingEvent(context.Background(), NewTrainingAssignedEvent(1, nil, 1, time.Now())))
	assert.NoError(t, pub.Close())
}

func TestDecodeMessage(t *testing.T) {
	completedAt := time.Now().UTC().Truncate(time.Second)
	event := NewTrainingCompletedEvent(3, 4, "CS201", "Data Structures", completedAt.Add(-time.Hour), completedAt)

	msg, err := NewMessage(context.Background(), event)
	require.NoError(t, err)

	decoded, err := DecodeMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, EventTrainingCompleted, decoded.Type)

	data, ok := decoded.Data.(TrainingCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, uint(4), data.TrainingID)
	assert.True(t, completedAt.Equal(data.CompletedAt))
}

func TestDecodeMessage_Rejects(t *testing.T) {
	_, err := DecodeMessage(message.NewMessage("1", []byte("not json")))
	assert.Error(t, err)

	_, err = DecodeMessage(message.NewMessage("2", []byte(`{"type":"training.deleted","data":{}}`)))
	assert.Error(t, err)
}

func TestTopicPublisher_RoundTrip(t *testing.T) {
	bus := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	pub := NewTopicPublisher(bus, "training-events", testLogger())

	event := NewTrainingStartedEvent(5, 9, "CS301", "Intrusion Detection", time.Now())
	require.NoError(t, pub.PublishTrainingEvent(context.Background(), event))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *TrainingEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- ConsumeFrom(ctx, bus, "training-events", testLogger(), func(_ context.Context, e *TrainingEvent) error {
			received <- e
			return nil
		})
	}()

	select {
	case got := <-received:
		assert.Equal(t, event.ID, got.ID)
		data, ok := got.Data.(TrainingStartedEvent)
		require.True(t, ok)
		assert.Equal(t, uint(9), data.TrainingID)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}

	require.NoError(t, pub.Close())
	assert.NoError(t, <-done)
}
