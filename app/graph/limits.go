package graph

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

const (
	DefaultMaxDepth      = 5
	DefaultMaxComplexity = 1000

	// listFactor weighs fields under a list as if ten items came back.
	listFactor = 10
)

// Limits bounds the shape of an operation before it is executed.
type Limits struct {
	MaxDepth      int
	MaxComplexity int
}

type limitWalker struct {
	schema    *graphql.Schema
	fragments map[string]*ast.FragmentDefinition
	visiting  map[string]bool
}

// Check measures op and reports the first limit it exceeds.
func (l Limits) Check(schema *graphql.Schema, doc *ast.Document, op *ast.OperationDefinition) error {
	w := &limitWalker{
		schema:    schema,
		fragments: map[string]*ast.FragmentDefinition{},
		visiting:  map[string]bool{},
	}
	for _, def := range doc.Definitions {
		if frag, ok := def.(*ast.FragmentDefinition); ok && frag.Name != nil {
			w.fragments[frag.Name.Value] = frag
		}
	}

	// Root fields sit at depth zero.
	root := rootType(schema, op.Operation)
	depth, cost := w.measure(op.SelectionSet, root, -1)

	if l.MaxDepth > 0 && depth > l.MaxDepth {
		return fmt.Errorf("query exceeds maximum operation depth of %d", l.MaxDepth)
	}
	if l.MaxComplexity > 0 && cost > l.MaxComplexity {
		return fmt.Errorf("query is too complex: %d. Maximum allowed complexity: %d", cost, l.MaxComplexity)
	}
	return nil
}

func rootType(schema *graphql.Schema, operation string) graphql.Type {
	switch operation {
	case ast.OperationTypeMutation:
		return schema.MutationType()
	case ast.OperationTypeSubscription:
		return schema.SubscriptionType()
	default:
		return schema.QueryType()
	}
}

// measure returns the field depth below set and its complexity: leaves cost
// one, object fields cost their children, list fields multiply them.
func (w *limitWalker) measure(set *ast.SelectionSet, parent graphql.Type, depth int) (int, int) {
	if set == nil {
		return depth, 0
	}
	maxDepth, cost := depth, 0

	for _, sel := range set.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			name := ""
			if s.Name != nil {
				name = s.Name.Value
			}
			// Introspection is free so tooling can always load the schema.
			if strings.HasPrefix(name, "__") {
				continue
			}
			child, isList := w.fieldType(parent, name)
			if s.SelectionSet == nil {
				cost++
				if depth+1 > maxDepth {
					maxDepth = depth + 1
				}
				continue
			}
			d, c := w.measure(s.SelectionSet, child, depth+1)
			if isList {
				c *= listFactor
			}
			cost += c
			if d > maxDepth {
				maxDepth = d
			}

		case *ast.InlineFragment:
			target := parent
			if s.TypeCondition != nil && s.TypeCondition.Name != nil {
				if t := w.schema.Type(s.TypeCondition.Name.Value); t != nil {
					target = t
				}
			}
			d, c := w.measure(s.SelectionSet, target, depth)
			cost += c
			if d > maxDepth {
				maxDepth = d
			}

		case *ast.FragmentSpread:
			if s.Name == nil {
				continue
			}
			frag, ok := w.fragments[s.Name.Value]
			if !ok || w.visiting[s.Name.Value] {
				continue
			}
			target := parent
			if frag.TypeCondition != nil && frag.TypeCondition.Name != nil {
				if t := w.schema.Type(frag.TypeCondition.Name.Value); t != nil {
					target = t
				}
			}
			w.visiting[s.Name.Value] = true
			d, c := w.measure(frag.SelectionSet, target, depth)
			w.visiting[s.Name.Value] = false
			cost += c
			if d > maxDepth {
				maxDepth = d
			}
		}
	}
	return maxDepth, cost
}

// fieldType resolves the named type of parent.name and whether it is a list.
func (w *limitWalker) fieldType(parent graphql.Type, name string) (graphql.Type, bool) {
	obj, ok := parent.(*graphql.Object)
	if !ok || obj == nil {
		return nil, false
	}
	def, ok := obj.Fields()[name]
	if !ok {
		return nil, false
	}

	t := def.Type
	isList := false
	for {
		switch wrapped := t.(type) {
		case *graphql.NonNull:
			t = wrapped.OfType
		case *graphql.List:
			isList = true
			t = wrapped.OfType
		default:
			return t, isList
		}
	}
}
