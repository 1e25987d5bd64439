//go:build integration

package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/Black-And-White-Club/photoshare/app/models"
	photodb "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
)

// TestDataGenerator creates repeatable test rows from a seed.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed the generator was built with.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// GenerateUsers creates count users with unique logins.
func (g *TestDataGenerator) GenerateUsers(count int) []*userdb.User {
	users := make([]*userdb.User, count)
	for i := range users {
		users[i] = &userdb.User{
			GithubLogin: fmt.Sprintf("%s-%d", g.faker.Username(), i),
			Name:        g.faker.Name(),
			Avatar:      fmt.Sprintf("https://avatars.githubusercontent.com/u/%d", g.faker.Number(1, 99999999)),
			GithubToken: g.faker.UUID(),
		}
	}
	return users
}

// GeneratePhotos creates count photos posted by owner, one second apart.
func (g *TestDataGenerator) GeneratePhotos(owner string, count int) []*photodb.Photo {
	base := time.Date(2026, 4, 15, 19, 9, 57, 0, time.UTC)
	photos := make([]*photodb.Photo, count)
	for i := range photos {
		category := models.PhotoCategories[g.faker.Number(0, len(models.PhotoCategories)-1)]
		photos[i] = &photodb.Photo{
			ID:          uuid.NewString(),
			Name:        fmt.Sprintf("%s %s", g.faker.Adjective(), g.faker.Noun()),
			Description: g.faker.HackerPhrase(),
			Category:    string(category),
			GithubUser:  owner,
			Created:     base.Add(time.Duration(i) * time.Second),
		}
	}
	return photos
}
