package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// ErrSubscriptionOverHTTP is reported when a subscription is posted to the
// plain HTTP endpoint.
var ErrSubscriptionOverHTTP = errors.New("subscriptions require a websocket connection")

// ErrMutationNotAllowed is reported for mutations sent with GET.
var ErrMutationNotAllowed = errors.New("mutations must be sent with POST")

// Request is a GraphQL request body.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`

	// ReadOnly rejects mutations, for requests that arrive over GET.
	ReadOnly bool `json:"-"`
}

// Executor parses, validates, limits and runs requests against a schema.
type Executor struct {
	schema graphql.Schema
	limits Limits
}

// NewExecutor creates an executor for schema.
func NewExecutor(schema graphql.Schema, limits Limits) *Executor {
	return &Executor{schema: schema, limits: limits}
}

// Schema returns the executable schema.
func (e *Executor) Schema() *graphql.Schema { return &e.schema }

// Execute runs a query or mutation.
func (e *Executor) Execute(ctx context.Context, req Request) *graphql.Result {
	doc, op, failed := e.prepare(req)
	if failed != nil {
		return failed
	}
	if op.Operation == ast.OperationTypeSubscription {
		return errorResult(ErrSubscriptionOverHTTP)
	}
	if req.ReadOnly && op.Operation == ast.OperationTypeMutation {
		return errorResult(ErrMutationNotAllowed)
	}
	return graphql.Execute(graphql.ExecuteParams{
		Schema:        e.schema,
		AST:           doc,
		OperationName: req.OperationName,
		Args:          req.Variables,
		Context:       ctx,
	})
}

// Subscribe runs any operation and streams its results. Queries and
// mutations yield a single result. The channel is closed when the operation
// finishes or ctx ends; callers must drain it.
func (e *Executor) Subscribe(ctx context.Context, req Request) chan *graphql.Result {
	doc, op, failed := e.prepare(req)
	if failed != nil {
		return single(failed)
	}
	if op.Operation != ast.OperationTypeSubscription {
		return single(e.Execute(ctx, req))
	}
	return graphql.ExecuteSubscription(graphql.ExecuteParams{
		Schema:        e.schema,
		AST:           doc,
		OperationName: req.OperationName,
		Args:          req.Variables,
		Context:       ctx,
	})
}

func (e *Executor) prepare(req Request) (*ast.Document, *ast.OperationDefinition, *graphql.Result) {
	if req.Query == "" {
		return nil, nil, errorResult(errors.New("must provide an operation"))
	}

	doc, err := parser.Parse(parser.ParseParams{Source: req.Query})
	if err != nil {
		return nil, nil, &graphql.Result{Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)}}
	}

	validation := graphql.ValidateDocument(&e.schema, doc, nil)
	if !validation.IsValid {
		return nil, nil, &graphql.Result{Errors: validation.Errors}
	}

	op, err := selectOperation(doc, req.OperationName)
	if err != nil {
		return nil, nil, errorResult(err)
	}

	if err := e.limits.Check(&e.schema, doc, op); err != nil {
		return nil, nil, errorResult(err)
	}
	return doc, op, nil
}

func selectOperation(doc *ast.Document, name string) (*ast.OperationDefinition, error) {
	var found *ast.OperationDefinition
	count := 0
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		count++
		if name == "" {
			found = op
			continue
		}
		if op.Name != nil && op.Name.Value == name {
			return op, nil
		}
	}

	switch {
	case name != "":
		return nil, fmt.Errorf("unknown operation named %q", name)
	case count == 0:
		return nil, errors.New("must provide an operation")
	case count > 1:
		return nil, errors.New("must provide operation name if query contains multiple operations")
	}
	return found, nil
}

func errorResult(err error) *graphql.Result {
	return &graphql.Result{Errors: []gqlerrors.FormattedError{gqlerrors.NewFormattedError(err.Error())}}
}

func single(res *graphql.Result) chan *graphql.Result {
	ch := make(chan *graphql.Result, 1)
	ch <- res
	close(ch)
	return ch
}
