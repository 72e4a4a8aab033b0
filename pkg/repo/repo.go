// Package repo defines the read-only seam between the engine and Neo4j:
// the session interfaces tests mock, and a generic keyed repository.
package repo

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrNotFound is returned by Get when no node carries the key.
var ErrNotFound = errors.New("node not found")

// Result is the subset of neo4j.ResultWithContext the engine reads.
type Result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// Runner executes one Cypher statement.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
}

// Session is a read session. ReadTransaction runs work exactly once in a
// read transaction; results must be consumed inside work.
type Session interface {
	Runner
	ReadTransaction(ctx context.Context, work func(tx Runner) (any, error)) (any, error)
	Close(ctx context.Context) error
}

// Opener hands out sessions. Production code uses DriverOpener; tests
// substitute an in-memory fake.
type Opener interface {
	OpenSession(ctx context.Context) Session
}

// Reader is a read-only repository keyed by ID.
type Reader[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	List(ctx context.Context, opts ListOpts) ([]T, error)
	Count(ctx context.Context) (int64, error)
}

// ListOpts controls pagination for List.
type ListOpts struct {
	Offset int
	Limit  int
}
