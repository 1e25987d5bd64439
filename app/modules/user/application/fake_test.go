package userservice

import (
	"context"
	"sync"
	"time"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	githubauth "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/github"
	userjwt "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/jwt"
	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake User Repo
// ------------------------

type FakeUserRepo struct {
	trace []string

	GetByLoginFunc  func(ctx context.Context, db bun.IDB, githubLogin string) (*userdb.User, error)
	GetByLoginsFunc func(ctx context.Context, db bun.IDB, githubLogins []string) ([]*userdb.User, error)
	ListFunc        func(ctx context.Context, db bun.IDB) ([]*userdb.User, error)
	CountFunc       func(ctx context.Context, db bun.IDB) (int, error)
	UpsertFunc      func(ctx context.Context, db bun.IDB, user *userdb.User) (bool, error)
	InsertManyFunc  func(ctx context.Context, db bun.IDB, users []*userdb.User) ([]*userdb.User, error)
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{trace: []string{}}
}

func (f *FakeUserRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeUserRepo) GetByLogin(ctx context.Context, db bun.IDB, githubLogin string) (*userdb.User, error) {
	f.record("GetByLogin")
	if f.GetByLoginFunc != nil {
		return f.GetByLoginFunc(ctx, db, githubLogin)
	}
	return nil, userdb.ErrNotFound
}

func (f *FakeUserRepo) GetByLogins(ctx context.Context, db bun.IDB, githubLogins []string) ([]*userdb.User, error) {
	f.record("GetByLogins")
	if f.GetByLoginsFunc != nil {
		return f.GetByLoginsFunc(ctx, db, githubLogins)
	}
	return []*userdb.User{}, nil
}

func (f *FakeUserRepo) List(ctx context.Context, db bun.IDB) ([]*userdb.User, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeUserRepo) Count(ctx context.Context, db bun.IDB) (int, error) {
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx, db)
	}
	return 0, nil
}

func (f *FakeUserRepo) Upsert(ctx context.Context, db bun.IDB, user *userdb.User) (bool, error) {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, db, user)
	}
	return true, nil
}

func (f *FakeUserRepo) InsertMany(ctx context.Context, db bun.IDB, users []*userdb.User) ([]*userdb.User, error) {
	f.record("InsertMany")
	if f.InsertManyFunc != nil {
		return f.InsertManyFunc(ctx, db, users)
	}
	return users, nil
}

func (f *FakeUserRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ userdb.Repository = (*FakeUserRepo)(nil)

// ------------------------
// Fake GitHub
// ------------------------

type FakeGitHub struct {
	AuthorizeFunc func(ctx context.Context, code string) (*githubauth.Profile, string, error)
}

func (f *FakeGitHub) Authorize(ctx context.Context, code string) (*githubauth.Profile, string, error) {
	if f.AuthorizeFunc != nil {
		return f.AuthorizeFunc(ctx, code)
	}
	return nil, "", githubauth.ErrAuthorization
}

var _ githubauth.Authorizer = (*FakeGitHub)(nil)

// ------------------------
// Fake Token Provider
// ------------------------

type FakeTokens struct {
	GenerateTokenFunc func(githubLogin string, ttl time.Duration) (string, error)
	ValidateTokenFunc func(token string) (*userjwt.Claims, error)
}

func (f *FakeTokens) GenerateToken(githubLogin string, ttl time.Duration) (string, error) {
	if f.GenerateTokenFunc != nil {
		return f.GenerateTokenFunc(githubLogin, ttl)
	}
	return "token-for-" + githubLogin, nil
}

func (f *FakeTokens) ValidateToken(token string) (*userjwt.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(token)
	}
	return nil, userjwt.ErrInvalidToken
}

var _ userjwt.Provider = (*FakeTokens)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type published struct {
	Topic   eventbus.Topic
	Payload any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *FakePublisher) Publish(ctx context.Context, topic eventbus.Topic, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{Topic: topic, Payload: payload})
	return nil
}

func (f *FakePublisher) Events() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]published, len(f.events))
	copy(out, f.events)
	return out
}

var _ eventbus.Publisher = (*FakePublisher)(nil)
