package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// OriginMetadataKey carries the id of the instance that produced a bridged message.
const OriginMetadataKey = "photoshare_origin"

// Decoder turns a bridged message payload back into the value local
// subscribers expect for a topic.
type Decoder func(data []byte) (any, error)

// JSONDecoder decodes a payload into a freshly allocated *T.
func JSONDecoder[T any]() Decoder {
	return func(data []byte) (any, error) {
		v := new(T)
		if err := json.Unmarshal(data, v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Bridge extends a local Bus across processes through a watermill
// publisher/subscriber pair. Publish delivers locally first and then forwards
// the payload; Run feeds payloads forwarded by other instances into the local
// bus. Local delivery order is therefore the same as without the bridge.
type Bridge struct {
	local      *Bus
	publisher  message.Publisher
	subscriber message.Subscriber
	decoders   map[Topic]Decoder
	origin     string
	logger     *slog.Logger
	wg         sync.WaitGroup
}

var _ EventBus = (*Bridge)(nil)

// NewBridge creates a Bridge. Only topics listed in decoders are consumed from
// the remote side.
func NewBridge(
	local *Bus,
	publisher message.Publisher,
	subscriber message.Subscriber,
	decoders map[Topic]Decoder,
	logger *slog.Logger,
) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		local:      local,
		publisher:  publisher,
		subscriber: subscriber,
		decoders:   decoders,
		origin:     watermill.NewUUID(),
		logger:     logger,
	}
}

// Origin returns the id this instance stamps on forwarded messages.
func (b *Bridge) Origin() string { return b.origin }

// Subscribe registers a local subscriber.
func (b *Bridge) Subscribe(topic Topic) (*Subscription, error) {
	return b.local.Subscribe(topic)
}

// Unsubscribe removes a local subscriber.
func (b *Bridge) Unsubscribe(sub *Subscription) {
	b.local.Unsubscribe(sub)
}

// Publish delivers payload to local subscribers and forwards it to other instances.
func (b *Bridge) Publish(ctx context.Context, topic Topic, payload any) error {
	if err := b.local.Publish(ctx, topic, payload); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(OriginMetadataKey, b.origin)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(string(topic), msg); err != nil {
		b.logger.ErrorContext(ctx, "Failed to forward event",
			slog.String("topic", string(topic)),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to forward %s: %w", topic, err)
	}
	return nil
}

// Run subscribes to every decodable topic and returns once all remote
// subscriptions are established. Consumption stops when ctx is cancelled or
// the subscriber is closed.
func (b *Bridge) Run(ctx context.Context) error {
	for topic, decode := range b.decoders {
		messages, err := b.subscriber.Subscribe(ctx, string(topic))
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}

		b.wg.Add(1)
		go b.consume(topic, decode, messages)

		b.logger.InfoContext(ctx, "Bridge consuming topic", slog.String("topic", string(topic)))
	}
	return nil
}

func (b *Bridge) consume(topic Topic, decode Decoder, messages <-chan *message.Message) {
	defer b.wg.Done()

	for msg := range messages {
		if msg.Metadata.Get(OriginMetadataKey) == b.origin {
			msg.Ack()
			continue
		}

		payload, err := decode(msg.Payload)
		if err != nil {
			// A payload that cannot be decoded never will be; ack it so it is not redelivered.
			b.logger.Error("Dropping undecodable bridged event",
				slog.String("topic", string(topic)),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			msg.Ack()
			continue
		}

		if err := b.local.Publish(msg.Context(), topic, payload); err != nil {
			msg.Nack()
			if errors.Is(err, ErrPublishAfterShutdown) {
				return
			}
			continue
		}
		msg.Ack()
	}
}

// Close closes the watermill publisher and subscriber and waits for the
// consumers to stop. It does not shut down the local bus.
func (b *Bridge) Close() error {
	var errs []error
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	b.wg.Wait()
	return errors.Join(errs...)
}
