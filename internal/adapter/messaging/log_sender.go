package messaging

import (
	"context"
	"log"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// LogSender writes events to the log. Used when no message broker is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, event domain.DomainEvent) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	log.Printf("event id=%s type=%s occurred_at=%s payload=%s",
		envelope.ID, envelope.Type, envelope.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), envelope.Payload)
	return nil
}
