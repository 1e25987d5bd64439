package graph

import (
	"fmt"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/models"
	"github.com/graphql-go/graphql"
)

// NewSchema builds the PhotoShare schema around r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	var userType *graphql.Object

	photoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Photo",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(graphql.ID),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						photo, err := sourcePhoto(p)
						if err != nil {
							return nil, err
						}
						return photo.ID, nil
					},
				},
				"name": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						photo, err := sourcePhoto(p)
						if err != nil {
							return nil, err
						}
						return photo.Name, nil
					},
				},
				"url": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						photo, err := sourcePhoto(p)
						if err != nil {
							return nil, err
						}
						return photo.URL, nil
					},
				},
				"description": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						photo, err := sourcePhoto(p)
						if err != nil || photo.Description == "" {
							return nil, err
						}
						return photo.Description, nil
					},
				},
				"category": &graphql.Field{
					Type: graphql.NewNonNull(photoCategoryEnum),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						photo, err := sourcePhoto(p)
						if err != nil {
							return nil, err
						}
						return photo.Category, nil
					},
				},
				"postedBy": &graphql.Field{
					Type:    graphql.NewNonNull(userType),
					Resolve: r.photoPostedBy,
				},
				"taggedUsers": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
					Resolve: r.photoTaggedUsers,
				},
				"created": &graphql.Field{
					Type: graphql.NewNonNull(dateTimeScalar),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						photo, err := sourcePhoto(p)
						if err != nil {
							return nil, err
						}
						return photo.Created, nil
					},
				},
			}
		}),
	})

	userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"githubLogin": &graphql.Field{
					Type: graphql.NewNonNull(graphql.ID),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := sourceUser(p)
						if err != nil {
							return nil, err
						}
						return user.GithubLogin, nil
					},
				},
				"name": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := sourceUser(p)
						if err != nil || user.Name == "" {
							return nil, err
						}
						return user.Name, nil
					},
				},
				"avatar": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := sourceUser(p)
						if err != nil || user.Avatar == "" {
							return nil, err
						}
						return user.Avatar, nil
					},
				},
				"postedPhotos": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(photoType))),
					Resolve: r.userPostedPhotos,
				},
				"inPhotos": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(photoType))),
					Resolve: r.userInPhotos,
				},
			}
		}),
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					payload, ok := p.Source.(*models.AuthPayload)
					if !ok {
						return nil, fmt.Errorf("unexpected auth payload source %T", p.Source)
					}
					return payload.Token, nil
				},
			},
			"user": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					payload, ok := p.Source.(*models.AuthPayload)
					if !ok {
						return nil, fmt.Errorf("unexpected auth payload source %T", p.Source)
					}
					return payload.User, nil
				},
			},
		},
	})

	postPhotoInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PostPhotoInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"category":    &graphql.InputObjectFieldConfig{Type: photoCategoryEnum, DefaultValue: models.PhotoCategoryPortrait},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"file":        &graphql.InputObjectFieldConfig{Type: uploadScalar},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me":          &graphql.Field{Type: userType, Resolve: r.me},
			"totalPhotos": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: r.totalPhotos},
			"allPhotos": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(photoType))),
				Resolve: r.allPhotos,
			},
			"Photo": &graphql.Field{
				Type: photoType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.photo,
			},
			"totalUsers": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: r.totalUsers},
			"allUsers": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Resolve: r.allUsers,
			},
			"User": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"login": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.user,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"postPhoto": &graphql.Field{
				Type: graphql.NewNonNull(photoType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postPhotoInput)},
				},
				Resolve: r.postPhoto,
			},
			"tagPhoto": &graphql.Field{
				Type: graphql.NewNonNull(photoType),
				Args: graphql.FieldConfigArgument{
					"githubLogin": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"photoID":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.tagPhoto,
			},
			"githubAuth": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"code": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.githubAuth,
			},
			"addFakeUsers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Args: graphql.FieldConfigArgument{
					"count": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
				},
				Resolve: r.addFakeUsers,
			},
			"fakeUserAuth": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"githubLogin": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.fakeUserAuth,
			},
		},
	})

	subscriptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Subscription",
		Fields: graphql.Fields{
			"newPhoto": &graphql.Field{
				Type:      graphql.NewNonNull(photoType),
				Subscribe: r.subscribe(eventbus.PhotoAdded),
				Resolve:   resolveSource,
			},
			"newUser": &graphql.Field{
				Type:      graphql.NewNonNull(userType),
				Subscribe: r.subscribe(eventbus.UserAdded),
				Resolve:   resolveSource,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:        queryType,
		Mutation:     mutationType,
		Subscription: subscriptionType,
		Types:        []graphql.Type{dateTimeScalar, uploadScalar},
	})
}
