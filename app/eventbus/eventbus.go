package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Topic names a class of events. The bus never interprets its contents.
type Topic string

const (
	// PhotoAdded is published once per newly posted photo.
	PhotoAdded Topic = "photo-added"
	// UserAdded is published once per newly created user.
	UserAdded Topic = "user-added"
)

// DefaultQueueSize is the per-subscriber queue capacity used when none is configured.
const DefaultQueueSize = 256

// Publisher hands payloads to every subscriber of a topic.
type Publisher interface {
	Publish(ctx context.Context, topic Topic, payload any) error
}

// Subscriber registers consumers for a topic.
type Subscriber interface {
	Subscribe(topic Topic) (*Subscription, error)
	Unsubscribe(sub *Subscription)
}

// EventBus is the full publish/subscribe capability.
type EventBus interface {
	Publisher
	Subscriber
}

// Option configures a Bus.
type Option func(*Bus)

// WithQueueSize sets the per-subscriber queue capacity. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(b *Bus) {
		if m != nil {
			b.metrics = m
		}
	}
}

// Bus is an in-process, topic keyed publish/subscribe hub.
//
// Publish delivers to the subscribers registered at the instant of the call:
// delivery happens under the registry read lock, so a concurrent Subscribe or
// Unsubscribe either fully precedes or fully follows it. Each subscriber owns a
// bounded FIFO queue; when it is full the oldest queued payload is dropped so
// the publisher never blocks on a slow consumer.
type Bus struct {
	mu        sync.RWMutex
	topics    map[Topic]map[uint64]*Subscription
	nextID    uint64
	shutdown  bool
	queueSize int
	metrics   Metrics
	logger    *slog.Logger
}

var _ EventBus = (*Bus)(nil)

// New creates a Bus.
func New(logger *slog.Logger, opts ...Option) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		topics:    make(map[Topic]map[uint64]*Subscription),
		queueSize: DefaultQueueSize,
		metrics:   NewNoop(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber on topic. Topics are created on first use.
func (b *Bus) Subscribe(topic Topic) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shutdown {
		return nil, ErrBusShutdown
	}

	b.nextID++
	sub := newSubscription(b.nextID, topic, b.queueSize, b)

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[uint64]*Subscription)
		b.topics[topic] = subs
	}
	subs[sub.id] = sub

	b.metrics.SubscriberAdded(string(topic))
	b.logger.Debug("Subscriber registered",
		slog.String("topic", string(topic)),
		slog.Uint64("subscription_id", sub.id),
		slog.Int("subscribers", len(subs)),
	)

	return sub, nil
}

// Publish delivers payload to every subscriber currently registered on topic.
// Publishing to a topic without subscribers is a silent no-op.
func (b *Bus) Publish(ctx context.Context, topic Topic, payload any) error {
	start := time.Now()

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.shutdown {
		b.logger.ErrorContext(ctx, "Publish after shutdown", slog.String("topic", string(topic)))
		return ErrPublishAfterShutdown
	}

	subs := b.topics[topic]
	delivered := 0
	for _, sub := range subs {
		ok, dropped := sub.enqueue(payload)
		if !ok {
			continue
		}
		delivered++
		if dropped {
			b.metrics.PayloadDropped(string(topic))
			b.logger.WarnContext(ctx, "Subscriber queue full, dropped oldest payload",
				slog.String("topic", string(topic)),
				slog.Uint64("subscription_id", sub.id),
			)
		}
	}

	b.metrics.PublishRecorded(string(topic), delivered, time.Since(start))
	b.logger.DebugContext(ctx, "Published",
		slog.String("topic", string(topic)),
		slog.Int("delivered", delivered),
	)

	return nil
}

// Unsubscribe removes sub from its topic and cancels it. It is idempotent.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.Close()
}

// remove drops the subscription from the registry. Called once per subscription.
func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[sub.topic]
	if !ok {
		return
	}
	if _, ok := subs[sub.id]; !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}

	b.metrics.SubscriberRemoved(string(sub.topic))
	b.logger.Debug("Subscriber removed",
		slog.String("topic", string(sub.topic)),
		slog.Uint64("subscription_id", sub.id),
	)
}

// SubscriberCount reports how many subscribers are registered on topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Topics returns the topics that currently have subscribers.
func (b *Bus) Topics() []Topic {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Topic, 0, len(b.topics))
	for t := range b.topics {
		out = append(out, t)
	}
	return out
}

// Shutdown cancels every subscriber and rejects further use of the bus.
// Calling it more than once is a no-op.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return nil
	}
	b.shutdown = true

	var all []*Subscription
	for topic, subs := range b.topics {
		for _, sub := range subs {
			all = append(all, sub)
		}
		delete(b.topics, topic)
	}
	b.mu.Unlock()

	for _, sub := range all {
		sub.cancel()
		b.metrics.SubscriberRemoved(string(sub.topic))
	}

	b.logger.InfoContext(ctx, "Event bus shut down", slog.Int("cancelled_subscribers", len(all)))
	return nil
}
