package eventbus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// NewNATSTransport creates a watermill publisher/subscriber pair on core NATS
// for use with a Bridge. JetStream is disabled and no queue group is set, so
// every instance receives every event.
func NewNATSTransport(natsURL string, logger *slog.Logger) (message.Publisher, message.Subscriber, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}
	jsConfig := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Unmarshaler:       marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
			CloseTimeout:      10 * time.Second,
		},
		wmLogger,
	)
	if err != nil {
		publisher.Close()
		return nil, nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return publisher, subscriber, nil
}
