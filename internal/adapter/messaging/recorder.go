package messaging

import (
	"context"
	"sync"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

// Recorder keeps every sent event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.DomainEvent
}

var _ port.DomainEventSender = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(ctx context.Context, event domain.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []domain.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DomainEvent(nil), r.events...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *Recorder) IsEmpty() bool {
	return r.Len() == 0
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
