package eventbus

import (
	"context"
	"sync"
)

// Subscription is one consumer registered on one topic. It buffers payloads
// in publish order until Next takes them.
type Subscription struct {
	id    uint64
	topic Topic
	bus   *Bus

	mu       sync.Mutex
	queue    []any
	capacity int
	closed   bool

	// ready holds at most one pending wake-up for a suspended Next.
	ready     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newSubscription(id uint64, topic Topic, capacity int, bus *Bus) *Subscription {
	return &Subscription{
		id:       id,
		topic:    topic,
		bus:      bus,
		queue:    make([]any, 0, capacity),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// ID returns the bus-unique identifier of the subscription.
func (s *Subscription) ID() uint64 { return s.id }

// Topic returns the topic the subscription is registered on.
func (s *Subscription) Topic() Topic { return s.topic }

// Done is closed once the subscription is cancelled.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Next returns the next payload in publish order. It blocks until a payload
// is available, the subscription is closed (ErrSubscriptionCancelled) or ctx
// is done (ctx.Err()). After close, queued payloads are discarded.
func (s *Subscription) Next(ctx context.Context) (any, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, ErrSubscriptionCancelled
		}
		if len(s.queue) > 0 {
			payload := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			more := len(s.queue) > 0
			s.mu.Unlock()
			if more {
				s.signal()
			}
			return payload, nil
		}
		s.mu.Unlock()

		select {
		case <-s.ready:
		case <-s.done:
			return nil, ErrSubscriptionCancelled
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len reports how many payloads are waiting to be taken.
func (s *Subscription) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close unregisters the subscription and wakes any suspended Next with
// ErrSubscriptionCancelled. Closing twice is a no-op.
func (s *Subscription) Close() {
	if s.cancel() && s.bus != nil {
		s.bus.remove(s)
	}
}

// cancel marks the subscription closed. It reports whether this call did it.
func (s *Subscription) cancel() bool {
	first := false
	s.closeOnce.Do(func() {
		first = true
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
	})
	return first
}

// enqueue appends payload, dropping the oldest entry when the queue is full.
// ok is false when the subscription is already closed.
func (s *Subscription) enqueue(payload any) (ok, dropped bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, false
	}
	if len(s.queue) >= s.capacity {
		s.queue[0] = nil
		s.queue = s.queue[1:]
		dropped = true
	}
	s.queue = append(s.queue, payload)
	s.mu.Unlock()

	s.signal()
	return true, dropped
}

// signal wakes one waiting Next without blocking.
func (s *Subscription) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}
