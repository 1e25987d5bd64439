//go:build integration

package userintegrationtests

import (
	"context"
	"testing"
	"time"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/models"
	userservice "github.com/Black-And-White-Club/photoshare/app/modules/user/application"
	githubauth "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/github"
	userjwt "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/jwt"
	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newService(t *testing.T, bus eventbus.Publisher) userservice.Service {
	t.Helper()
	return userservice.NewUserService(
		userdb.NewRepository(testEnv.DB),
		githubauth.NewClient("id", "secret"),
		userjwt.NewProvider("integration-secret", time.Hour),
		bus,
		testEnv.Logger,
		shared.NewNoopServiceMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		testEnv.DB,
	)
}

func TestAddFakeUsersPublishesEachUser(t *testing.T) {
	testEnv.Reset(t)
	bus := eventbus.New(testEnv.Logger)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })

	sub, err := bus.Subscribe(eventbus.UserAdded)
	require.NoError(t, err)
	defer sub.Close()

	svc := newService(t, bus)
	users, err := svc.AddFakeUsers(testEnv.Ctx, 3)
	require.NoError(t, err)
	require.Len(t, users, 3)

	ctx, cancel := context.WithTimeout(testEnv.Ctx, 2*time.Second)
	defer cancel()
	for _, want := range users {
		payload, err := sub.Next(ctx)
		require.NoError(t, err)
		got, ok := payload.(*models.User)
		require.True(t, ok, "payload is %T", payload)
		assert.Equal(t, want.GithubLogin, got.GithubLogin)
	}

	total, err := svc.TotalUsers(testEnv.Ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestFakeUserAuthRoundTrip(t *testing.T) {
	testEnv.Reset(t)
	bus := eventbus.New(testEnv.Logger)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })

	svc := newService(t, bus)
	users, err := svc.AddFakeUsers(testEnv.Ctx, 1)
	require.NoError(t, err)

	payload, err := svc.FakeUserAuth(testEnv.Ctx, users[0].GithubLogin)
	require.NoError(t, err)
	require.NotEmpty(t, payload.Token)

	me, err := svc.Authenticate(testEnv.Ctx, payload.Token)
	require.NoError(t, err)
	assert.Equal(t, users[0].GithubLogin, me.GithubLogin)

	_, err = svc.FakeUserAuth(testEnv.Ctx, "nobody")
	assert.ErrorIs(t, err, userservice.ErrUserNotFound)
}
