package repo

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// DriverOpener opens read sessions on a Neo4j driver.
type DriverOpener struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewDriverOpener creates an Opener. An empty database uses the server default.
func NewDriverOpener(driver neo4j.DriverWithContext, database string) *DriverOpener {
	return &DriverOpener{driver: driver, database: database}
}

// OpenSession opens a session in read access mode.
func (o *DriverOpener) OpenSession(ctx context.Context) Session {
	return &driverSession{sess: o.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: o.database,
	})}
}

// driverSession adapts neo4j.SessionWithContext to Session.
type driverSession struct {
	sess neo4j.SessionWithContext
}

func (s *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return s.sess.Run(ctx, cypher, params)
}

// ReadTransaction uses an explicit transaction rather than the driver's
// managed ExecuteRead, which retries transient failures on its own.
func (s *driverSession) ReadTransaction(ctx context.Context, work func(tx Runner) (any, error)) (any, error) {
	tx, err := s.sess.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Close(ctx)
	v, err := work(txRunner{tx: tx})
	if err != nil {
		return nil, err
	}
	return v, tx.Commit(ctx)
}

func (s *driverSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

type txRunner struct {
	tx neo4j.ExplicitTransaction
}

func (t txRunner) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return t.tx.Run(ctx, cypher, params)
}

// Neo4jRepo is a generic read-only repository over one node label.
type Neo4jRepo[T any, ID comparable] struct {
	opener    Opener
	label     string
	idKey     string
	orderKey  string
	fromProps func(map[string]any) T
}

// Neo4jOption configures a Neo4jRepo.
type Neo4jOption[T any, ID comparable] func(*Neo4jRepo[T, ID])

// WithIDKey sets the property name used as the key (default "id").
func WithIDKey[T any, ID comparable](key string) Neo4jOption[T, ID] {
	return func(r *Neo4jRepo[T, ID]) { r.idKey = key }
}

// WithOrderKey sets the property List sorts by (default: the key).
func WithOrderKey[T any, ID comparable](key string) Neo4jOption[T, ID] {
	return func(r *Neo4jRepo[T, ID]) { r.orderKey = key }
}

// NewNeo4jRepo creates a repository for nodes labelled label.
func NewNeo4jRepo[T any, ID comparable](
	opener Opener,
	label string,
	fromProps func(map[string]any) T,
	opts ...Neo4jOption[T, ID],
) *Neo4jRepo[T, ID] {
	r := &Neo4jRepo[T, ID]{
		opener:    opener,
		label:     label,
		idKey:     "id",
		fromProps: fromProps,
	}
	for _, o := range opts {
		o(r)
	}
	if r.orderKey == "" {
		r.orderKey = r.idKey
	}
	return r
}

// Compile-time interface check.
var _ Reader[any, string] = (*Neo4jRepo[any, string])(nil)

func (r *Neo4jRepo[T, ID]) Get(ctx context.Context, id ID) (T, error) {
	var zero T
	sess := r.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := fmt.Sprintf("MATCH (n:%s {%s: $id}) RETURN n LIMIT 1", r.label, r.idKey)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return zero, err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%s %v: %w", r.label, id, ErrNotFound)
	}
	node, err := nodeValue(result.Record(), "n")
	if err != nil {
		return zero, err
	}
	return r.fromProps(node.Props), nil
}

func (r *Neo4jRepo[T, ID]) List(ctx context.Context, opts ListOpts) ([]T, error) {
	sess := r.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	cypher := fmt.Sprintf("MATCH (n:%s) RETURN n ORDER BY n.%s ASC SKIP $offset LIMIT $limit", r.label, r.orderKey)
	result, err := sess.Run(ctx, cypher, map[string]any{"offset": int64(opts.Offset), "limit": int64(limit)})
	if err != nil {
		return nil, err
	}

	items := []T{}
	for result.Next(ctx) {
		node, err := nodeValue(result.Record(), "n")
		if err != nil {
			return nil, err
		}
		items = append(items, r.fromProps(node.Props))
	}
	return items, result.Err()
}

func (r *Neo4jRepo[T, ID]) Count(ctx context.Context) (int64, error) {
	sess := r.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS total", r.label)
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return 0, err
	}
	if !result.Next(ctx) {
		return 0, result.Err()
	}
	v, _ := result.Record().Get("total")
	total, _ := v.(int64)
	return total, nil
}

func nodeValue(rec *neo4j.Record, key string) (dbtype.Node, error) {
	node, isNil, err := neo4j.GetRecordValue[dbtype.Node](rec, key)
	if err != nil {
		return dbtype.Node{}, err
	}
	if isNil {
		return dbtype.Node{}, fmt.Errorf("record field %q is null", key)
	}
	return node, nil
}
