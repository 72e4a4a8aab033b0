// Package graph is the read-only traversal and query layer over the Neo4j
// legislative graph. Every method is a parameterized Cypher read; derived
// scores are computed by the engine packages, not here.
package graph

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/pkg/repo"
	"github.com/parlgraph/parlgraph/pkg/resilience"
)

// DefaultFullTextIndex is the statement full-text index created by ingestion.
const DefaultFullTextIndex = "statement_content"

// GraphStore provides legislative graph queries on top of a session opener.
type GraphStore struct {
	opener        repo.Opener
	breaker       *resilience.Breaker
	fullTextIndex string
	parties       *repo.Neo4jRepo[domain.Party, string]
	committees    *repo.Neo4jRepo[domain.Committee, string]
}

// Option configures a GraphStore.
type Option func(*GraphStore)

// WithBreaker routes every store call through b.
func WithBreaker(b *resilience.Breaker) Option {
	return func(g *GraphStore) { g.breaker = b }
}

// WithFullTextIndex overrides the statement full-text index name.
func WithFullTextIndex(name string) Option {
	return func(g *GraphStore) {
		if name != "" {
			g.fullTextIndex = name
		}
	}
}

// New creates a GraphStore reading through driver.
func New(driver neo4j.DriverWithContext, database string, opts ...Option) *GraphStore {
	return NewWithOpener(repo.NewDriverOpener(driver, database), opts...)
}

// NewWithOpener creates a GraphStore over an arbitrary opener (tests).
func NewWithOpener(opener repo.Opener, opts ...Option) *GraphStore {
	g := &GraphStore{
		opener:        opener,
		fullTextIndex: DefaultFullTextIndex,
		parties: repo.NewNeo4jRepo[domain.Party, string](opener, domain.LabelParty, partyFromProps,
			repo.WithIDKey[domain.Party, string]("code"),
			repo.WithOrderKey[domain.Party, string]("name")),
		committees: repo.NewNeo4jRepo[domain.Committee, string](opener, domain.LabelCommittee, committeeFromProps,
			repo.WithIDKey[domain.Committee, string]("code"),
			repo.WithOrderKey[domain.Committee, string]("name")),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// IsStoreFailure reports whether err means the store itself is unhealthy.
// Not-found, validation and caller cancellation are not store failures.
func IsStoreFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidFilter) ||
		errors.Is(err, repo.ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return neo4j.IsConnectivityError(err) || neo4j.IsRetryable(err)
}

// classify maps raw driver errors onto the domain taxonomy.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, context.Canceled):
		return err
	case IsStoreFailure(err):
		return &domain.StoreError{Op: op, Err: err}
	default:
		return fmt.Errorf("graph: %s: %w", op, err)
	}
}

// guard runs f through the breaker and classifies the error.
func (g *GraphStore) guard(ctx context.Context, op string, f func(context.Context) error) error {
	var err error
	if g.breaker != nil {
		err = g.breaker.Call(ctx, f)
	} else {
		err = f(ctx)
	}
	return classify(op, err)
}

// read runs work once inside a read transaction. Failures are never retried
// here; they surface as StoreError for the caller to retry.
func (g *GraphStore) read(ctx context.Context, op string, work func(tx repo.Runner) error) error {
	return g.guard(ctx, op, func(ctx context.Context) error {
		sess := g.opener.OpenSession(ctx)
		defer sess.Close(ctx)
		_, err := sess.ReadTransaction(ctx, func(tx repo.Runner) (any, error) {
			return nil, work(tx)
		})
		return err
	})
}

// each runs cypher and calls fn for every record.
func each(ctx context.Context, tx repo.Runner, cypher string, params map[string]any, fn func(*neo4j.Record) error) error {
	result, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	for result.Next(ctx) {
		if err := fn(result.Record()); err != nil {
			return err
		}
	}
	return result.Err()
}

// single runs cypher and calls fn with the first record, if any.
func single(ctx context.Context, tx repo.Runner, cypher string, params map[string]any, fn func(*neo4j.Record) error) (bool, error) {
	result, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return false, err
	}
	if !result.Next(ctx) {
		return false, result.Err()
	}
	return true, fn(result.Record())
}

// countQuery runs a statement returning one integer column.
func (g *GraphStore) countQuery(ctx context.Context, op, cypher, column string, params map[string]any) (int64, error) {
	var n int64
	err := g.read(ctx, op, func(tx repo.Runner) error {
		_, err := single(ctx, tx, cypher, params, func(rec *neo4j.Record) error {
			n = intValue(rec, column)
			return nil
		})
		return err
	})
	return n, err
}

// Ping verifies the store answers a trivial read.
func (g *GraphStore) Ping(ctx context.Context) error {
	return g.read(ctx, "ping", func(tx repo.Runner) error {
		_, err := single(ctx, tx, `RETURN 1 AS ok`, nil, func(*neo4j.Record) error { return nil })
		return err
	})
}
