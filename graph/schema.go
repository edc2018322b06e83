package graph

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"

	"github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	loader "github.com/syssam/crm/contrib/dataloader"
	"github.com/syssam/crm/service"
)

//go:embed schema.graphql
var sdl string

// SDL returns the schema definition of the API.
func SDL() string { return sdl }

// Default execution limits.
const (
	DefaultMaxDepth       = 10
	DefaultMaxParallelism = 10
)

type options struct {
	maxDepth       int
	maxParallelism int
	logger         *slog.Logger
}

// Option configures NewSchema.
type Option func(*options)

// WithMaxDepth limits the nesting depth of operations.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithMaxParallelism limits the number of fields resolved concurrently.
func WithMaxParallelism(n int) Option {
	return func(o *options) { o.maxParallelism = n }
}

// WithLogger sets the logger that receives resolver panics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Schema is the executable CRM schema.
type Schema struct {
	*graphql.Schema
	svc *service.Service
}

// NewSchema parses the schema and binds it to resolvers backed by svc.
func NewSchema(svc *service.Service, opts ...Option) (*Schema, error) {
	o := options{
		maxDepth:       DefaultMaxDepth,
		maxParallelism: DefaultMaxParallelism,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	s, err := graphql.ParseSchema(sdl, NewResolver(svc),
		graphql.MaxDepth(o.maxDepth),
		graphql.MaxParallelism(o.maxParallelism),
		graphql.Logger(panicLogger{logger: o.logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("graph: parsing schema: %w", err)
	}
	return &Schema{Schema: s, svc: svc}, nil
}

// Exec runs an operation. A context without loaders gets a new set for the
// duration of the call.
func (s *Schema) Exec(ctx context.Context, query, operationName string, variables map[string]any) *graphql.Response {
	if loader.For[*Loaders](ctx) == nil {
		ctx = WithLoaders(ctx, s.svc)
	}
	return s.Schema.Exec(ctx, query, operationName, variables)
}

// FormatSchema writes the schema in canonical SDL form.
func FormatSchema(w io.Writer) error {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return fmt.Errorf("graph: loading schema: %w", err)
	}
	formatter.NewFormatter(w).FormatSchema(s)
	return nil
}
