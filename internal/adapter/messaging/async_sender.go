package messaging

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

var ErrSenderClosed = errors.New("event sender closed")

// AsyncSender queues events and lets a pool of workers forward them to next.
// Delivery failures are logged by the workers and not reported to the caller.
type AsyncSender struct {
	next    port.DomainEventSender
	queue   chan domain.DomainEvent
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	sending sync.WaitGroup
	wg      sync.WaitGroup
}

var _ port.DomainEventSender = (*AsyncSender)(nil)

func NewAsyncSender(next port.DomainEventSender, queueSize int, timeout time.Duration) *AsyncSender {
	return &AsyncSender{
		next:    next,
		queue:   make(chan domain.DomainEvent, queueSize),
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Send enqueues the event, blocking while the queue is full. A blocked Send
// returns ErrSenderClosed once Close is called.
func (a *AsyncSender) Send(ctx context.Context, event domain.DomainEvent) error {
	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return ErrSenderClosed
	}
	a.sending.Add(1)
	a.mu.RUnlock()
	defer a.sending.Done()

	select {
	case a.queue <- event:
		return nil
	case <-a.done:
		return ErrSenderClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start launches the worker pool.
func (a *AsyncSender) Start(workerCount int) {
	for i := 0; i < workerCount; i++ {
		a.wg.Add(1)
		go func(id int) {
			defer a.wg.Done()
			a.workerLoop(id)
		}(i)
	}
}

// Close stops accepting events and waits until the workers drained the queue.
func (a *AsyncSender) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.wg.Wait()
		return
	}
	a.closed = true
	a.mu.Unlock()

	close(a.done)
	a.sending.Wait()
	close(a.queue)

	a.wg.Wait()
}

func (a *AsyncSender) workerLoop(id int) {
	for event := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)

		if err := a.next.Send(ctx, event); err != nil {
			log.Printf("worker %d: failed to send %s: %v", id, event.EventType(), err)
		} else {
			log.Printf("worker %d: sent %s", id, event.EventType())
		}

		cancel()
	}
}
