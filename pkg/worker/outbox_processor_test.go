package worker

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/pkg/logger"
	"github.com/linguacare/admin-api/pkg/messaging"
	"github.com/linguacare/admin-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test_worker", "outbox")

func testLogger() *logger.Logger {
	return &logger.Logger{ZL: zerolog.Nop()}
}

type statusUpdate struct {
	id      uuid.UUID
	status  model.OutboxStatus
	retryAt *time.Time
}

type fakeOutboxRepo struct {
	pending     []*model.OutboxEvent
	updates     []statusUpdate
	deadLetters []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(context.Context, *model.OutboxEvent) error { return nil }

func (f *fakeOutboxRepo) GetPendingEventsWithLock(context.Context, int) ([]*model.OutboxEvent, error) {
	return f.pending, nil
}

// BeginTx fails because the fake has no real database. Dead-letter tests
// observe the attempt through the absence of a scheduled retry.
func (f *fakeOutboxRepo) BeginTx(context.Context) (*sql.Tx, error) {
	return nil, errors.New("no real tx in fake")
}

func (f *fakeOutboxRepo) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uuid.UUID, status model.OutboxStatus, _ *string, retryAt *time.Time) error {
	f.updates = append(f.updates, statusUpdate{id: id, status: status, retryAt: retryAt})
	return nil
}

func (f *fakeOutboxRepo) MoveToDeadLetter(_ context.Context, _ *sql.Tx, evt *model.OutboxEvent) error {
	f.deadLetters = append(f.deadLetters, evt)
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeBroker struct {
	published map[string][]interface{}
	err       error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string][]interface{})}
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	if b.err != nil {
		return b.err
	}
	b.published[channel] = append(b.published[channel], message)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (*messaging.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBroker) Close() error { return nil }

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Millisecond,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

func pendingEvent(retryCount int) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:         uuid.New(),
		EventType:  "appointment.confirmed",
		Channel:    "notifications:admins",
		Payload:    []byte(`{"event_type":"appointment.confirmed"}`),
		Status:     model.OutboxStatusPending,
		RetryCount: retryCount,
	}
}

func TestProcessEventsPublishesToChannel(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{pendingEvent(0)}}
	broker := newFakeBroker()
	p := NewOutboxProcessor(repo, broker, testConfig(), testLogger(), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published["notifications:admins"], 1)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, model.OutboxStatusProcessed, repo.updates[0].status)
}

func TestProcessEventsSchedulesRetryOnFailure(t *testing.T) {
	evt := pendingEvent(0)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{evt}}
	broker := newFakeBroker()
	broker.err = errors.New("redis down")
	p := NewOutboxProcessor(repo, broker, testConfig(), testLogger(), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	require.Len(t, repo.updates, 1)
	assert.Equal(t, model.OutboxStatusRetry, repo.updates[0].status)
	assert.Equal(t, evt.ID, repo.updates[0].id)
	require.NotNil(t, repo.updates[0].retryAt)
	assert.True(t, repo.updates[0].retryAt.After(time.Now()))
}

func TestProcessEventsDeadLettersAfterMaxRetries(t *testing.T) {
	evt := pendingEvent(2) // next failure is attempt 3 of 3
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{evt}}
	broker := newFakeBroker()
	broker.err = errors.New("redis down")
	p := NewOutboxProcessor(repo, broker, testConfig(), testLogger(), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	// The dead-letter transaction cannot be committed through the fake,
	// but no retry may be scheduled once attempts are exhausted.
	assert.Empty(t, repo.updates)
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	repo := &fakeOutboxRepo{}
	broker := newFakeBroker()

	assert.Panics(t, func() {
		NewOutboxProcessor(repo, broker, OutboxProcessorConfig{}, testLogger(), testMetrics)
	})
}
