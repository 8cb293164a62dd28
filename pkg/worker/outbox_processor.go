package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
	"github.com/jwalitptl/telehealth-api/pkg/messaging"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// RetryAttempts is the number of in-line publish attempts per claim.
	RetryAttempts int
	RetryDelay    time.Duration
	// MaxRetries caps how many times a failed event is claimed again.
	MaxRetries int
}

// OutboxProcessor relays outbox rows to the broker. Each event is published
// on the channel named after its type.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	metrics *metrics.Metrics
	sleep   func(time.Duration)
	now     func() time.Time
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
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
	if config.MaxRetries <= 0 {
		panic("MaxRetries must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		metrics: metrics,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	log.Info().Dur("poll_interval", p.config.PollInterval).Msg("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process outbox events")
			}
		}
	}
}

// ProcessBatch claims due events and publishes them, returning how many were
// delivered.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.ClaimPending(ctx, p.config.BatchSize, p.config.MaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to claim pending events: %w", err)
	}

	delivered := 0
	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			log.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Int("retry_count", event.RetryCount).
				Msg("failed to process event")
			continue
		}
		delivered++
	}
	return delivered, nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	msg := &messaging.Message{
		ID:         event.ID,
		Type:       event.EventType,
		Payload:    json.RawMessage(event.Payload),
		OccurredAt: event.CreatedAt,
	}

	attempt := 0
	err := p.retry(func() error {
		if attempt > 0 {
			p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
		}
		attempt++
		return p.broker.Publish(ctx, event.EventType, msg)
	})

	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		retryAt := p.now().Add(p.backoff(event.RetryCount))
		if updateErr := p.repo.MarkFailed(ctx, event.ID, err.Error(), retryAt); updateErr != nil {
			log.Error().Err(updateErr).Str("event_id", event.ID.String()).Msg("failed to mark event as failed")
		}
		return err
	}

	if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}
	p.metrics.OutboxEventsProcessed.Inc()
	return nil
}

// backoff doubles the retry delay for every earlier failed claim.
func (p *OutboxProcessor) backoff(retryCount int) time.Duration {
	if retryCount > 10 {
		retryCount = 10
	}
	return p.config.RetryDelay << uint(retryCount)
}

func (p *OutboxProcessor) retry(fn func() error) error {
	var err error
	for i := 0; i < p.config.RetryAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < p.config.RetryAttempts-1 {
			p.sleep(p.config.RetryDelay)
		}
	}
	return err
}
