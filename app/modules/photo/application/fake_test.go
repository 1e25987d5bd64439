package photoservice

import (
	"context"
	"io"
	"sync"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	photodb "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/repositories"
	photostorage "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/storage"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Photo Repo
// ------------------------

type FakePhotoRepo struct {
	trace []string

	InsertFunc       func(ctx context.Context, db bun.IDB, photo *photodb.Photo) error
	GetByIDFunc      func(ctx context.Context, db bun.IDB, id string) (*photodb.Photo, error)
	ListFunc         func(ctx context.Context, db bun.IDB) ([]*photodb.Photo, error)
	CountFunc        func(ctx context.Context, db bun.IDB) (int, error)
	ListPostedByFunc func(ctx context.Context, db bun.IDB, githubLogin string) ([]*photodb.Photo, error)
	ListTaggingFunc  func(ctx context.Context, db bun.IDB, githubLogin string) ([]*photodb.Photo, error)
	AddTagFunc       func(ctx context.Context, db bun.IDB, photoID, githubLogin string) error
	TaggedLoginsFunc func(ctx context.Context, db bun.IDB, photoID string) ([]string, error)
}

func NewFakePhotoRepo() *FakePhotoRepo {
	return &FakePhotoRepo{trace: []string{}}
}

func (f *FakePhotoRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakePhotoRepo) Insert(ctx context.Context, db bun.IDB, photo *photodb.Photo) error {
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, photo)
	}
	return nil
}

func (f *FakePhotoRepo) GetByID(ctx context.Context, db bun.IDB, id string) (*photodb.Photo, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, photodb.ErrNotFound
}

func (f *FakePhotoRepo) List(ctx context.Context, db bun.IDB) ([]*photodb.Photo, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakePhotoRepo) Count(ctx context.Context, db bun.IDB) (int, error) {
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx, db)
	}
	return 0, nil
}

func (f *FakePhotoRepo) ListPostedBy(ctx context.Context, db bun.IDB, githubLogin string) ([]*photodb.Photo, error) {
	f.record("ListPostedBy")
	if f.ListPostedByFunc != nil {
		return f.ListPostedByFunc(ctx, db, githubLogin)
	}
	return nil, nil
}

func (f *FakePhotoRepo) ListTagging(ctx context.Context, db bun.IDB, githubLogin string) ([]*photodb.Photo, error) {
	f.record("ListTagging")
	if f.ListTaggingFunc != nil {
		return f.ListTaggingFunc(ctx, db, githubLogin)
	}
	return nil, nil
}

func (f *FakePhotoRepo) AddTag(ctx context.Context, db bun.IDB, photoID, githubLogin string) error {
	f.record("AddTag")
	if f.AddTagFunc != nil {
		return f.AddTagFunc(ctx, db, photoID, githubLogin)
	}
	return nil
}

func (f *FakePhotoRepo) TaggedLogins(ctx context.Context, db bun.IDB, photoID string) ([]string, error) {
	f.record("TaggedLogins")
	if f.TaggedLoginsFunc != nil {
		return f.TaggedLoginsFunc(ctx, db, photoID)
	}
	return nil, nil
}

func (f *FakePhotoRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ photodb.Repository = (*FakePhotoRepo)(nil)

// ------------------------
// Fake Store
// ------------------------

type FakeStore struct {
	mu      sync.Mutex
	saved   map[string][]byte
	removed []string

	SaveFunc func(ctx context.Context, id string, r io.Reader) (int64, error)
}

func NewFakeStore() *FakeStore {
	return &FakeStore{saved: map[string][]byte{}}
}

func (f *FakeStore) Save(ctx context.Context, id string, r io.Reader) (int64, error) {
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, id, r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[id] = data
	return int64(len(data)), nil
}

func (f *FakeStore) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *FakeStore) URL(id string) string {
	return "http://test/img/photos/" + id + ".jpg"
}

var _ photostorage.Store = (*FakeStore)(nil)

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

	PublishFunc func(ctx context.Context, topic eventbus.Topic, payload any) error
}

func (f *FakePublisher) Publish(ctx context.Context, topic eventbus.Topic, payload any) error {
	f.mu.Lock()
	f.events = append(f.events, published{Topic: topic, Payload: payload})
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, topic, payload)
	}
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
