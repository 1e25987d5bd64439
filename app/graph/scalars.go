package graph

import (
	"time"

	"github.com/Black-And-White-Club/photoshare/app/models"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// dateTimeLayout matches JavaScript's Date.toISOString.
const dateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

var dateTimeScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "A valid date time value.",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case time.Time:
			return v.UTC().Format(dateTimeLayout)
		case *time.Time:
			if v == nil {
				return nil
			}
			return v.UTC().Format(dateTimeLayout)
		case string:
			if t, ok := parseDateTime(v); ok {
				return t.UTC().Format(dateTimeLayout)
			}
		}
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if t, ok := parseDateTime(s); ok {
			return t
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		s, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		if t, ok := parseDateTime(s.Value); ok {
			return t
		}
		return nil
	},
})

func parseDateTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// uploadScalar only arrives through multipart variables; it has no literal
// form and is never serialized.
var uploadScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Upload",
	Description: "A file sent with a GraphQL multipart request.",
	Serialize: func(value interface{}) interface{} {
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		if u, ok := value.(*models.Upload); ok && u != nil {
			return u
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return nil
	},
})

var photoCategoryEnum = func() *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, c := range models.PhotoCategories {
		values[string(c)] = &graphql.EnumValueConfig{Value: c}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:   "PhotoCategory",
		Values: values,
	})
}()
