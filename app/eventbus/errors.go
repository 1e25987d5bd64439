package eventbus

import "errors"

var (
	// ErrSubscriptionCancelled is returned by Subscription.Next once the
	// subscription has been closed. It marks normal termination of the stream,
	// much like io.EOF, and is not a fault.
	ErrSubscriptionCancelled = errors.New("eventbus: subscription cancelled")

	// ErrPublishAfterShutdown is returned when a writer publishes after the bus
	// has been shut down. It points at a lifecycle ordering bug in the caller.
	ErrPublishAfterShutdown = errors.New("eventbus: publish after shutdown")

	// ErrBusShutdown is returned by Subscribe once the bus has been shut down.
	ErrBusShutdown = errors.New("eventbus: bus is shut down")
)
