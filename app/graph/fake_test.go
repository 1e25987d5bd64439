package graph

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/models"
	photoservice "github.com/Black-And-White-Club/photoshare/app/modules/photo/application"
	userservice "github.com/Black-And-White-Club/photoshare/app/modules/user/application"
	"github.com/stretchr/testify/require"
)

// ------------------------
// Fake Photo Service
// ------------------------

type FakePhotoService struct {
	PostPhotoFunc      func(ctx context.Context, user *models.User, input models.PostPhotoInput) (*models.Photo, error)
	TagPhotoFunc       func(ctx context.Context, githubLogin, photoID string) (*models.Photo, error)
	GetPhotoFunc       func(ctx context.Context, id string) (*models.Photo, error)
	AllPhotosFunc      func(ctx context.Context) ([]*models.Photo, error)
	TotalPhotosFunc    func(ctx context.Context) (int, error)
	PhotosPostedByFunc func(ctx context.Context, githubLogin string) ([]*models.Photo, error)
	PhotosTaggingFunc  func(ctx context.Context, githubLogin string) ([]*models.Photo, error)
	TaggedLoginsFunc   func(ctx context.Context, photoID string) ([]string, error)
}

func (f *FakePhotoService) PostPhoto(ctx context.Context, user *models.User, input models.PostPhotoInput) (*models.Photo, error) {
	if f.PostPhotoFunc != nil {
		return f.PostPhotoFunc(ctx, user, input)
	}
	if user == nil {
		return nil, photoservice.ErrUnauthenticated
	}
	return &models.Photo{ID: "new", Name: input.Name, Category: input.Category, GithubUser: user.GithubLogin}, nil
}

func (f *FakePhotoService) TagPhoto(ctx context.Context, githubLogin, photoID string) (*models.Photo, error) {
	if f.TagPhotoFunc != nil {
		return f.TagPhotoFunc(ctx, githubLogin, photoID)
	}
	return nil, photoservice.ErrPhotoNotFound
}

func (f *FakePhotoService) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	if f.GetPhotoFunc != nil {
		return f.GetPhotoFunc(ctx, id)
	}
	return nil, photoservice.ErrPhotoNotFound
}

func (f *FakePhotoService) AllPhotos(ctx context.Context) ([]*models.Photo, error) {
	if f.AllPhotosFunc != nil {
		return f.AllPhotosFunc(ctx)
	}
	return []*models.Photo{}, nil
}

func (f *FakePhotoService) TotalPhotos(ctx context.Context) (int, error) {
	if f.TotalPhotosFunc != nil {
		return f.TotalPhotosFunc(ctx)
	}
	return 0, nil
}

func (f *FakePhotoService) PhotosPostedBy(ctx context.Context, githubLogin string) ([]*models.Photo, error) {
	if f.PhotosPostedByFunc != nil {
		return f.PhotosPostedByFunc(ctx, githubLogin)
	}
	return []*models.Photo{}, nil
}

func (f *FakePhotoService) PhotosTagging(ctx context.Context, githubLogin string) ([]*models.Photo, error) {
	if f.PhotosTaggingFunc != nil {
		return f.PhotosTaggingFunc(ctx, githubLogin)
	}
	return []*models.Photo{}, nil
}

func (f *FakePhotoService) TaggedLogins(ctx context.Context, photoID string) ([]string, error) {
	if f.TaggedLoginsFunc != nil {
		return f.TaggedLoginsFunc(ctx, photoID)
	}
	return []string{}, nil
}

var _ photoservice.Service = (*FakePhotoService)(nil)

// ------------------------
// Fake User Service
// ------------------------

type FakeUserService struct {
	GithubAuthFunc   func(ctx context.Context, code string) (*models.AuthPayload, error)
	FakeUserAuthFunc func(ctx context.Context, githubLogin string) (*models.AuthPayload, error)
	AddFakeUsersFunc func(ctx context.Context, count int) ([]*models.User, error)
	AuthenticateFunc func(ctx context.Context, token string) (*models.User, error)
	GetUserFunc      func(ctx context.Context, githubLogin string) (*models.User, error)
	GetUsersFunc     func(ctx context.Context, githubLogins []string) ([]*models.User, error)
	AllUsersFunc     func(ctx context.Context) ([]*models.User, error)
	TotalUsersFunc   func(ctx context.Context) (int, error)
}

func (f *FakeUserService) GithubAuth(ctx context.Context, code string) (*models.AuthPayload, error) {
	if f.GithubAuthFunc != nil {
		return f.GithubAuthFunc(ctx, code)
	}
	return nil, userservice.ErrUnauthenticated
}

func (f *FakeUserService) FakeUserAuth(ctx context.Context, githubLogin string) (*models.AuthPayload, error) {
	if f.FakeUserAuthFunc != nil {
		return f.FakeUserAuthFunc(ctx, githubLogin)
	}
	return nil, userservice.ErrUserNotFound
}

func (f *FakeUserService) AddFakeUsers(ctx context.Context, count int) ([]*models.User, error) {
	if f.AddFakeUsersFunc != nil {
		return f.AddFakeUsersFunc(ctx, count)
	}
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, &models.User{GithubLogin: "fake" + string(rune('a'+i))})
	}
	return users, nil
}

// Authenticate accepts "token-for-<login>".
func (f *FakeUserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if f.AuthenticateFunc != nil {
		return f.AuthenticateFunc(ctx, token)
	}
	const prefix = "token-for-"
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		return &models.User{GithubLogin: token[len(prefix):]}, nil
	}
	return nil, userservice.ErrUnauthenticated
}

func (f *FakeUserService) GetUser(ctx context.Context, githubLogin string) (*models.User, error) {
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, githubLogin)
	}
	return &models.User{GithubLogin: githubLogin}, nil
}

func (f *FakeUserService) GetUsers(ctx context.Context, githubLogins []string) ([]*models.User, error) {
	if f.GetUsersFunc != nil {
		return f.GetUsersFunc(ctx, githubLogins)
	}
	users := make([]*models.User, 0, len(githubLogins))
	for _, login := range githubLogins {
		users = append(users, &models.User{GithubLogin: login})
	}
	return users, nil
}

func (f *FakeUserService) AllUsers(ctx context.Context) ([]*models.User, error) {
	if f.AllUsersFunc != nil {
		return f.AllUsersFunc(ctx)
	}
	return []*models.User{}, nil
}

func (f *FakeUserService) TotalUsers(ctx context.Context) (int, error) {
	if f.TotalUsersFunc != nil {
		return f.TotalUsersFunc(ctx)
	}
	return 0, nil
}

var _ userservice.Service = (*FakeUserService)(nil)

// ------------------------
// Helpers
// ------------------------

type testEnv struct {
	bus    *eventbus.Bus
	photos *FakePhotoService
	users  *FakeUserService
	exec   *Executor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		bus:    eventbus.New(slog.Default()),
		photos: &FakePhotoService{},
		users:  &FakeUserService{},
	}
	schema, err := NewSchema(NewResolver(env.photos, env.users, env.bus, slog.Default()))
	require.NoError(t, err)
	env.exec = NewExecutor(schema, Limits{MaxDepth: DefaultMaxDepth, MaxComplexity: DefaultMaxComplexity})
	t.Cleanup(func() { _ = env.bus.Shutdown(context.Background()) })
	return env
}
