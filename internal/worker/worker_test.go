package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optifeed/optifeed/internal/models"
	"github.com/optifeed/optifeed/internal/tasks"
)

type fakeBroker struct {
	messages  []*kafka.Message
	readErr   error
	committed []*kafka.Message
	commitErr error
	closed    bool
}

func (f *fakeBroker) ReadMessage(time.Duration) (*kafka.Message, error) {
	if len(f.messages) == 0 {
		if f.readErr != nil {
			return nil, f.readErr
		}
		return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeBroker) CommitMessage(msg *kafka.Message) ([]kafka.TopicPartition, error) {
	f.committed = append(f.committed, msg)
	return nil, f.commitErr
}

func (f *fakeBroker) Close() error {
	f.closed = true
	return nil
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "consuming", StateConsuming.String())
	assert.Equal(t, "failed", StateFailed.String())
}

func TestEstablishConnectionRetriesThenSucceeds(t *testing.T) {
	conn := &fakeBroker{}
	attempts := 0
	var slept []time.Duration

	w := newTestWorker(&fakeGenerator{}, &fakeChat{})
	w.connect = func(tasks.BrokerConfig) (brokerConn, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("broker not up yet")
		}
		return conn, nil
	}
	w.sleep = func(d time.Duration) { slept = append(slept, d) }

	got, err := w.establishConnection()
	require.NoError(t, err)
	assert.Same(t, conn, got.(*fakeBroker))
	assert.Equal(t, StateConsuming, w.State())
	assert.Equal(t, 3, attempts)
	// Fixed delay between failed attempts, none after success.
	assert.Equal(t, []time.Duration{CONNECT_RETRY_DELAY, CONNECT_RETRY_DELAY}, slept)
}

func TestEstablishConnectionExhausted(t *testing.T) {
	attempts := 0
	w := newTestWorker(&fakeGenerator{}, &fakeChat{})
	w.connect = func(tasks.BrokerConfig) (brokerConn, error) {
		attempts++
		return nil, errors.New("connection refused")
	}
	w.sleep = func(time.Duration) {}

	_, err := w.establishConnection()
	assert.ErrorIs(t, err, ErrConnectExhausted)
	assert.Equal(t, StateFailed, w.State())
	assert.Equal(t, CONNECT_MAX_ATTEMPTS, attempts)
}

func TestRunReturnsExhaustionError(t *testing.T) {
	w := newTestWorker(&fakeGenerator{}, &fakeChat{})
	w.connect = func(tasks.BrokerConfig) (brokerConn, error) {
		return nil, errors.New("connection refused")
	}
	w.sleep = func(time.Duration) {}

	err := w.Run(context.Background())
	assert.ErrorIs(t, err, ErrConnectExhausted)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	conn := &fakeBroker{}
	w := newTestWorker(&fakeGenerator{}, &fakeChat{})
	w.connect = func(tasks.BrokerConfig) (brokerConn, error) { return conn, nil }
	w.sleep = func(time.Duration) {}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, w.Run(ctx))
	assert.True(t, conn.closed)
}

func taskMessage(t *testing.T, task models.Task) *kafka.Message {
	t.Helper()
	value, err := json.Marshal(task)
	require.NoError(t, err)
	return &kafka.Message{Value: value}
}

func TestHandleMessageAcksAfterProcessing(t *testing.T) {
	conn := &fakeBroker{}
	chat := &fakeChat{}
	w := newTestWorker(&fakeGenerator{}, chat)

	msg := taskMessage(t, models.Task{Type: models.TaskTypeAlert, Message: "hello"})
	w.handleMessage(context.Background(), conn, msg)

	require.Len(t, conn.committed, 1)
	assert.Same(t, msg, conn.committed[0])
	assert.Len(t, chat.sent, 1)
}

func TestHandleMessageAcksMalformedPayload(t *testing.T) {
	conn := &fakeBroker{}
	chat := &fakeChat{}
	w := newTestWorker(&fakeGenerator{}, chat)

	// Undecodable deliveries are discarded but still acked so the queue
	// never wedges on one bad task.
	w.handleMessage(context.Background(), conn, &kafka.Message{Value: []byte("{not json")})

	assert.Len(t, conn.committed, 1)
	assert.Empty(t, chat.sent)
}

func TestHandleMessageAcksUnknownTaskType(t *testing.T) {
	conn := &fakeBroker{}
	w := newTestWorker(&fakeGenerator{}, &fakeChat{})

	msg := taskMessage(t, models.Task{Type: "reindex"})
	w.handleMessage(context.Background(), conn, msg)

	assert.Len(t, conn.committed, 1)
}
