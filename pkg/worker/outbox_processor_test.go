package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository/memory"
	"github.com/jwalitptl/telehealth-api/pkg/messaging"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
)

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, channel string, msg *messaging.Message) error {
	return m.Called(channel, msg).Error(0)
}

func (m *mockBroker) Subscribe(ctx context.Context, handler messaging.Handler, channels ...string) error {
	return nil
}

func (m *mockBroker) Ping(ctx context.Context) error { return nil }

func (m *mockBroker) Close() error { return nil }

func newProcessor(store *memory.Store, broker messaging.Broker) *OutboxProcessor {
	p := NewOutboxProcessor(store.Outbox(), broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Minute,
		MaxRetries:    3,
	}, metrics.NewMetrics(prometheus.NewRegistry(), "test", ""))
	p.sleep = func(time.Duration) {}
	return p
}

func queue(t *testing.T, store *memory.Store, eventType, payload string) *model.OutboxEvent {
	t.Helper()
	e := &model.OutboxEvent{EventType: eventType, Payload: []byte(payload)}
	require.NoError(t, store.Outbox().Create(context.Background(), e))
	return e
}

func TestProcessBatchPublishesOnEventTypeChannel(t *testing.T) {
	store := memory.NewStore()
	broker := new(mockBroker)
	p := newProcessor(store, broker)
	e := queue(t, store, model.EventAppointmentBooked, `{"appointment_id":"x"}`)

	broker.On("Publish", model.EventAppointmentBooked, mock.MatchedBy(func(msg *messaging.Message) bool {
		return msg.ID == e.ID && msg.Type == model.EventAppointmentBooked && string(msg.Payload) == `{"appointment_id":"x"}`
	})).Return(nil).Once()

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	broker.AssertExpectations(t)

	events := store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusProcessed, events[0].Status)
	assert.NotNil(t, events[0].ProcessedAt)

	// Nothing left to claim.
	n, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessBatchRetriesThenMarksFailed(t *testing.T) {
	store := memory.NewStore()
	broker := new(mockBroker)
	p := newProcessor(store, broker)
	now := time.Now()
	p.now = func() time.Time { return now }
	queue(t, store, model.EventDoctorApproved, `{}`)

	broker.On("Publish", model.EventDoctorApproved, mock.Anything).Return(errors.New("redis down")).Twice()

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	broker.AssertExpectations(t)

	events := store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusFailed, events[0].Status)
	assert.Equal(t, 1, events[0].RetryCount)
	require.NotNil(t, events[0].ErrorMessage)
	assert.Equal(t, "redis down", *events[0].ErrorMessage)
	require.NotNil(t, events[0].RetryAt)
	assert.WithinDuration(t, now.Add(time.Minute), *events[0].RetryAt, time.Second)

	// Not due yet.
	n, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBackoffDoubles(t *testing.T) {
	p := newProcessor(memory.NewStore(), new(mockBroker))

	assert.Equal(t, time.Minute, p.backoff(0))
	assert.Equal(t, 4*time.Minute, p.backoff(2))
	assert.Equal(t, p.backoff(10), p.backoff(50))
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(nil, nil, OutboxProcessorConfig{}, nil)
	})
}

func TestCleanup(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	old := queue(t, store, model.EventAppointmentBooked, `{}`)
	fresh := queue(t, store, model.EventAppointmentBooked, `{}`)
	queue(t, store, model.EventAppointmentBooked, `{}`)
	require.NoError(t, store.Outbox().MarkProcessed(ctx, old.ID))
	require.NoError(t, store.Outbox().MarkProcessed(ctx, fresh.ID))

	w := NewOutboxCleanupWorker(store.Outbox(), time.Hour, time.Minute, metrics.NewMetrics(prometheus.NewRegistry(), "test", ""))
	w.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	rows, err := w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.Len(t, store.Outbox().Events(), 1)
}
