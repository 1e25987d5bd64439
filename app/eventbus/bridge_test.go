package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bridgedPhoto struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newBridgePair(t *testing.T) (a, b *Bridge, busA, busB *Bus) {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	decoders := map[Topic]Decoder{PhotoAdded: JSONDecoder[bridgedPhoto]()}

	busA = New(slog.Default())
	busB = New(slog.Default())
	a = NewBridge(busA, pubSub, pubSub, decoders, slog.Default())
	b = NewBridge(busB, pubSub, pubSub, decoders, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Run(ctx))
	require.NoError(t, b.Run(ctx))

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, a.Close())
		assert.NoError(t, b.Close())
	})
	return a, b, busA, busB
}

func TestBridgeForwardsToOtherInstances(t *testing.T) {
	a, b, _, _ := newBridgePair(t)
	assert.NotEqual(t, a.Origin(), b.Origin())

	local, err := a.Subscribe(PhotoAdded)
	require.NoError(t, err)
	defer local.Close()

	remote, err := b.Subscribe(PhotoAdded)
	require.NoError(t, err)
	defer remote.Close()

	sent := &bridgedPhoto{ID: "42", Name: "Test"}
	require.NoError(t, a.Publish(context.Background(), PhotoAdded, sent))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := local.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, sent, got, "local subscribers get the original value")

	got, err = remote.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, sent, got)

	// The publishing instance must not receive its own forwarded copy.
	assertNothingPending(t, local)
}

func TestBridgeSkipsTopicsWithoutDecoder(t *testing.T) {
	a, b, _, _ := newBridgePair(t)

	remote, err := b.Subscribe(UserAdded)
	require.NoError(t, err)
	defer remote.Close()

	require.NoError(t, a.Publish(context.Background(), UserAdded, map[string]string{"githubLogin": "x"}))
	assertNothingPending(t, remote)
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                              { return nil }

func TestBridgePublishReportsForwardFailure(t *testing.T) {
	bus := New(slog.Default())
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	bridge := NewBridge(bus, failingPublisher{}, pubSub, nil, slog.Default())
	defer bridge.Close()

	local, err := bridge.Subscribe(PhotoAdded)
	require.NoError(t, err)
	defer bridge.Unsubscribe(local)

	err = bridge.Publish(context.Background(), PhotoAdded, bridgedPhoto{ID: "1"})
	require.Error(t, err)

	// Local delivery already happened.
	assert.Equal(t, 1, local.Len())
}

func TestBridgePublishAfterShutdown(t *testing.T) {
	bus := New(slog.Default())
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	bridge := NewBridge(bus, pubSub, pubSub, nil, slog.Default())
	defer bridge.Close()

	require.NoError(t, bus.Shutdown(context.Background()))

	err := bridge.Publish(context.Background(), PhotoAdded, bridgedPhoto{ID: "1"})
	assert.ErrorIs(t, err, ErrPublishAfterShutdown)
}
