package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// Envelope is the wire form of a domain event on the message bus.
type Envelope struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEnvelope(event domain.DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}

	return Envelope{
		ID:         uuid.New(),
		Type:       event.EventType(),
		OccurredAt: event.HasOccurredAt(),
		Payload:    payload,
	}, nil
}

// DomainEvent decodes the payload back into the concrete event type.
func (e Envelope) DomainEvent() (domain.DomainEvent, error) {
	switch e.Type {
	case domain.BookSoldOutEventType:
		var event domain.BookSoldOut
		if err := json.Unmarshal(e.Payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", e.Type, err)
		}
		return event, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
}
