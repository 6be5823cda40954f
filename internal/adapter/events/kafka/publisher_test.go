package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(w)

	event := domain.SettlementEvent{
		TransactionID: uuid.New(),
		PayerID:       uuid.New(),
		PayeeID:       uuid.New(),
		Amount:        decimal.NewFromInt(40),
		Currency:      "ETB",
		Status:        domain.TransactionStatusSuccess,
		OccurredAt:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, event.TransactionID.String(), string(msg.Key))
	assert.Equal(t, event.OccurredAt, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventTypeHeader, msg.Headers[0].Key)
	assert.Equal(t, "transaction.SUCCESS", string(msg.Headers[0].Value))

	var decoded domain.SettlementEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.TransactionID, decoded.TransactionID)
	assert.True(t, decoded.Amount.Equal(event.Amount))
}

func TestPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewPublisherWithWriter(w)

	err := p.Publish(context.Background(), domain.SettlementEvent{TransactionID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish settlement event")
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewPublisherWithWriter(w).Close())
	assert.True(t, w.closed)
}

func TestHealthCheck_NoBrokers(t *testing.T) {
	hc := NewHealthCheck(nil)
	assert.Equal(t, "kafka", hc.Name())
	assert.Error(t, hc.Ping(context.Background()))
}

func TestHealthCheck_AllBrokersDown(t *testing.T) {
	hc := NewHealthCheck([]string{"b1:9092", "b2:9092"})
	var dialed []string
	hc.dial = func(ctx context.Context, network, address string) (*kafka.Conn, error) {
		dialed = append(dialed, address)
		return nil, errors.New("connection refused")
	}

	err := hc.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka unreachable")
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, dialed)
}
