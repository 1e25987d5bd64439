package graph

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/models"
	photoservice "github.com/Black-And-White-Club/photoshare/app/modules/photo/application"
	userservice "github.com/Black-And-White-Club/photoshare/app/modules/user/application"
	"github.com/graphql-go/graphql"
)

// Resolver serves as dependency injection for the schema.
type Resolver struct {
	Photos photoservice.Service
	Users  userservice.Service
	Bus    eventbus.Subscriber
	Logger *slog.Logger
}

// NewResolver creates a new Resolver with dependencies injected.
func NewResolver(photos photoservice.Service, users userservice.Service, bus eventbus.Subscriber, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Photos: photos, Users: users, Bus: bus, Logger: logger}
}

func sourcePhoto(p graphql.ResolveParams) (*models.Photo, error) {
	photo, ok := p.Source.(*models.Photo)
	if !ok || photo == nil {
		return nil, fmt.Errorf("unexpected photo source %T", p.Source)
	}
	return photo, nil
}

func sourceUser(p graphql.ResolveParams) (*models.User, error) {
	user, ok := p.Source.(*models.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("unexpected user source %T", p.Source)
	}
	return user, nil
}

// Query resolvers

func (r *Resolver) me(p graphql.ResolveParams) (interface{}, error) {
	if user := UserFromContext(p.Context); user != nil {
		return user, nil
	}
	return nil, nil
}

func (r *Resolver) totalPhotos(p graphql.ResolveParams) (interface{}, error) {
	return r.Photos.TotalPhotos(p.Context)
}

func (r *Resolver) allPhotos(p graphql.ResolveParams) (interface{}, error) {
	return r.Photos.AllPhotos(p.Context)
}

func (r *Resolver) photo(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	photo, err := r.Photos.GetPhoto(p.Context, id)
	if errors.Is(err, photoservice.ErrPhotoNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

func (r *Resolver) totalUsers(p graphql.ResolveParams) (interface{}, error) {
	return r.Users.TotalUsers(p.Context)
}

func (r *Resolver) allUsers(p graphql.ResolveParams) (interface{}, error) {
	return r.Users.AllUsers(p.Context)
}

func (r *Resolver) user(p graphql.ResolveParams) (interface{}, error) {
	login, _ := p.Args["login"].(string)
	user, err := r.Users.GetUser(p.Context, login)
	if errors.Is(err, userservice.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Mutation resolvers

func (r *Resolver) postPhoto(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["input"].(map[string]interface{})
	input := models.PostPhotoInput{}
	input.Name, _ = raw["name"].(string)
	input.Description, _ = raw["description"].(string)
	switch c := raw["category"].(type) {
	case models.PhotoCategory:
		input.Category = c
	case string:
		input.Category = models.PhotoCategory(c)
	}
	if upload, ok := raw["file"].(*models.Upload); ok {
		input.File = upload
	}
	return r.Photos.PostPhoto(p.Context, UserFromContext(p.Context), input)
}

func (r *Resolver) tagPhoto(p graphql.ResolveParams) (interface{}, error) {
	login, _ := p.Args["githubLogin"].(string)
	photoID, _ := p.Args["photoID"].(string)
	return r.Photos.TagPhoto(p.Context, login, photoID)
}

func (r *Resolver) githubAuth(p graphql.ResolveParams) (interface{}, error) {
	code, _ := p.Args["code"].(string)
	return r.Users.GithubAuth(p.Context, code)
}

func (r *Resolver) addFakeUsers(p graphql.ResolveParams) (interface{}, error) {
	count, ok := p.Args["count"].(int)
	if !ok {
		count = 1
	}
	return r.Users.AddFakeUsers(p.Context, count)
}

func (r *Resolver) fakeUserAuth(p graphql.ResolveParams) (interface{}, error) {
	login, _ := p.Args["githubLogin"].(string)
	return r.Users.FakeUserAuth(p.Context, login)
}

// Type resolvers

func (r *Resolver) photoPostedBy(p graphql.ResolveParams) (interface{}, error) {
	photo, err := sourcePhoto(p)
	if err != nil {
		return nil, err
	}
	return r.Users.GetUser(p.Context, photo.GithubUser)
}

func (r *Resolver) photoTaggedUsers(p graphql.ResolveParams) (interface{}, error) {
	photo, err := sourcePhoto(p)
	if err != nil {
		return nil, err
	}
	logins, err := r.Photos.TaggedLogins(p.Context, photo.ID)
	if err != nil {
		return nil, err
	}
	return r.Users.GetUsers(p.Context, logins)
}

func (r *Resolver) userPostedPhotos(p graphql.ResolveParams) (interface{}, error) {
	user, err := sourceUser(p)
	if err != nil {
		return nil, err
	}
	return r.Photos.PhotosPostedBy(p.Context, user.GithubLogin)
}

func (r *Resolver) userInPhotos(p graphql.ResolveParams) (interface{}, error) {
	user, err := sourceUser(p)
	if err != nil {
		return nil, err
	}
	return r.Photos.PhotosTagging(p.Context, user.GithubLogin)
}

// resolveSource returns the subscription payload as the field value.
func resolveSource(p graphql.ResolveParams) (interface{}, error) {
	return p.Source, nil
}
