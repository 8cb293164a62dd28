package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Handler consumes one delivered message. A returned error is logged by the
// broker and does not stop the subscription.
type Handler func(ctx context.Context, msg *Message) error

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, msg *Message) error
	// Subscribe blocks, dispatching messages from channels to handler until ctx is done.
	Subscribe(ctx context.Context, handler Handler, channels ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Message is the envelope carried on every channel.
type Message struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// DecodePayload unmarshals the message payload into v.
func (m *Message) DecodePayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}
