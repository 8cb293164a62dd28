package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

// Publisher records domain events for asynchronous delivery.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type EventService struct {
	outboxRepo repository.OutboxRepository
}

func NewEventService(outboxRepo repository.OutboxRepository) *EventService {
	return &EventService{outboxRepo: outboxRepo}
}

// Publish stores the event in the outbox. The worker relays it to the broker.
func (s *EventService) Publish(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payloadJSON,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	log.Debug().
		Str("event_id", event.ID.String()).
		Str("event_type", eventType).
		Msg("event queued")
	return nil
}

// Emit publishes and only logs failures. Used after a state change has
// already been committed, where the caller's request must still succeed.
func Emit(ctx context.Context, p Publisher, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, payload); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to queue event")
	}
}
