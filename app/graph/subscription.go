package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/graphql-go/graphql"
)

// subscribe returns the field subscriber for topic. Every client request
// gets its own bus subscription, which lives until the request context ends.
func (r *Resolver) subscribe(topic eventbus.Topic) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		sub, err := r.Bus.Subscribe(topic)
		if err != nil {
			return nil, err
		}
		r.Logger.DebugContext(p.Context, "Subscription started",
			slog.String("topic", string(topic)),
			slog.Uint64("subscription_id", sub.ID()),
		)
		return stream(p.Context, sub, r.Logger), nil
	}
}

// stream pumps sub into the channel the executor consumes. The subscription
// is closed, and thereby unregistered, when ctx ends or the bus cancels it.
func stream(ctx context.Context, sub *eventbus.Subscription, logger *slog.Logger) chan interface{} {
	out := make(chan interface{})
	go func() {
		defer close(out)
		defer sub.Close()

		for {
			payload, err := sub.Next(ctx)
			if err != nil {
				if !errors.Is(err, eventbus.ErrSubscriptionCancelled) && ctx.Err() == nil {
					logger.WarnContext(ctx, "Subscription stream ended", slog.Any("error", err))
				}
				logger.DebugContext(ctx, "Subscription stopped",
					slog.String("topic", string(sub.Topic())),
					slog.Uint64("subscription_id", sub.ID()),
				)
				return
			}

			select {
			case out <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
