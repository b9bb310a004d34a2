package mykafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/trafine/internal/logging"
)

type fakeWriter struct {
	mu      sync.Mutex
	msgs    []kafka.Message
	err     error
	closed  bool
	release chan struct{}
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil, nil)
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"}, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NoError(t, p.Close())
}

func TestPublishEvent_WritesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, 8)

	err := p.PublishEvent(context.Background(), TopicIncidentEvents, "7", map[string]any{
		"type":       "incident_voted",
		"incidentId": 7,
		"vote":       -1,
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, TopicIncidentEvents, msg.Topic)
	assert.Equal(t, []byte("7"), msg.Key)

	var event map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "incident_voted", event["type"])
	assert.EqualValues(t, 7, event["incidentId"])
	assert.EqualValues(t, -1, event["vote"])
}

func TestPublishEvent_DoesNotWaitForBroker(t *testing.T) {
	w := &fakeWriter{release: make(chan struct{})}
	p := newProducer(w, nil, 4)

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, p.PublishEvent(context.Background(), TopicUserEvents, "alice", map[string]any{"type": "user_registered"}))
	}
	assert.Less(t, time.Since(start), time.Second)

	// the writer holds one message, the queue the rest; one more may or may
	// not fit depending on scheduling, so fill until it reports full
	var err error
	for i := 0; i < 4 && err == nil; i++ {
		err = p.PublishEvent(context.Background(), TopicUserEvents, "alice", map[string]any{"type": "user_registered"})
	}
	assert.ErrorIs(t, err, ErrQueueFull)

	close(w.release)
	require.NoError(t, p.Close())
	assert.GreaterOrEqual(t, len(w.msgs), 4)
	assert.True(t, w.closed)
}

func TestPublishEvent_DeliveryFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	w := &fakeWriter{err: errors.New("broker down")}
	p := newProducer(w, logging.NewWithWriter(&buf, "info"), 8)

	err := p.PublishEvent(context.Background(), TopicUserEvents, "alice", map[string]any{"type": "user_registered"})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line))
	assert.Equal(t, "event_delivery_failed", line["msg"])
	assert.Equal(t, TopicUserEvents, line["topic"])
	assert.Equal(t, "broker down", line["error"])
}

func TestPublishEvent_Rejections(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, 8)

	err := p.PublishEvent(context.Background(), TopicUserEvents, "alice", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err = p.PublishEvent(context.Background(), TopicUserEvents, "alice", map[string]any{"type": "user_registered"})
	assert.ErrorIs(t, err, ErrProducerClosed)
}
