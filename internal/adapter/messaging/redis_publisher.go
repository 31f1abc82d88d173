package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

const DefaultTopic = "BookStoreTopic"

// RedisPublisher publishes event envelopes on a Redis pub/sub channel.
type RedisPublisher struct {
	client *redis.Client
	topic  string
}

var _ port.DomainEventSender = (*RedisPublisher)(nil)

func NewRedisPublisher(client *redis.Client, topic string) *RedisPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &RedisPublisher{client: client, topic: topic}
}

func (p *RedisPublisher) Send(ctx context.Context, event domain.DomainEvent) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := p.client.Publish(ctx, p.topic, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Subscription delivers decoded envelopes from the publisher's topic.
type Subscription struct {
	pubsub    *redis.PubSub
	envelopes chan Envelope
	done      chan struct{}
	closeOnce sync.Once
}

// Subscribe listens on the topic. The subscription is confirmed before it returns,
// so events published afterwards are not missed.
func (p *RedisPublisher) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := p.client.Subscribe(ctx, p.topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", p.topic, err)
	}

	sub := &Subscription{
		pubsub:    pubsub,
		envelopes: make(chan Envelope, 16),
		done:      make(chan struct{}),
	}

	go func() {
		defer close(sub.envelopes)
		for msg := range pubsub.Channel() {
			var envelope Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				log.Printf("subscription %s: dropping malformed message: %v", p.topic, err)
				continue
			}
			select {
			case sub.envelopes <- envelope:
			case <-sub.done:
				return
			}
		}
	}()

	return sub, nil
}

func (s *Subscription) Envelopes() <-chan Envelope {
	return s.envelopes
}

// Close stops delivery even when the consumer no longer reads Envelopes.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.pubsub.Close()
}
