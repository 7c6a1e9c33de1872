package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	"github.com/linguacare/admin-api/pkg/logger"
	"github.com/linguacare/admin-api/pkg/messaging"
	"github.com/linguacare/admin-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	RetainFor     time.Duration
}

// OutboxProcessor drains pending outbox rows and publishes each payload to
// its channel. Publishing is at-least-once: a crash after publish but
// before the status update re-delivers on the next poll.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()

	p.logger.Info("Starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		case <-cleanupTicker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "Failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType,
				"channel", event.Channel)
		}
	}

	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	err := p.broker.Publish(ctx, event.Channel, event.Payload)
	if err == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		if updateErr := p.repo.UpdateStatusTx(ctx, nil, event.ID, model.OutboxStatusProcessed, nil, nil); updateErr != nil {
			p.logger.Error(updateErr, "Failed to mark event processed", "event_id", event.ID.String())
			return updateErr
		}
		return nil
	}

	errStr := err.Error()
	if event.RetryCount+1 >= p.config.RetryAttempts {
		return p.deadLetter(ctx, event, &errStr)
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := time.Now().Add(p.config.RetryDelay)
	if updateErr := p.repo.UpdateStatusTx(ctx, nil, event.ID, model.OutboxStatusRetry, &errStr, &retryAt); updateErr != nil {
		p.logger.Error(updateErr, "Failed to schedule retry", "event_id", event.ID.String())
		return updateErr
	}
	return err
}

// deadLetter moves an exhausted event out of the hot table. The move and
// the terminal status share one transaction so the event is never both
// retryable and dead.
func (p *OutboxProcessor) deadLetter(ctx context.Context, event *model.OutboxEvent, errStr *string) error {
	p.metrics.OutboxEventsFailed.Inc()

	tx, err := p.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin dead-letter tx: %w", err)
	}
	defer tx.Rollback()

	event.ErrorMessage = errStr
	if err := p.repo.MoveToDeadLetter(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to dead-letter event: %w", err)
	}
	if err := p.repo.UpdateStatusTx(ctx, tx, event.ID, model.OutboxStatusFailed, errStr, nil); err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dead-letter tx: %w", err)
	}

	p.logger.Warn("Event moved to dead letter queue",
		"event_id", event.ID.String(),
		"event_type", event.EventType,
		"channel", event.Channel)
	return nil
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	if p.config.RetainFor <= 0 {
		return
	}
	deleted, err := p.repo.DeleteProcessedBefore(ctx, time.Now().Add(-p.config.RetainFor))
	if err != nil {
		p.logger.Error(err, "Failed to clean up processed events")
		return
	}
	if deleted > 0 {
		p.logger.Info("Cleaned up processed outbox events", "deleted", deleted)
	}
}
