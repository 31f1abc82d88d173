package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type DomainEventSender interface {
	// Send hands a domain event to the messaging infrastructure
	Send(ctx context.Context, event domain.DomainEvent) error
}
