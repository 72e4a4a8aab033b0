// Package repotest provides a scripted in-memory repo.Opener for tests.
package repotest

import (
	"context"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/parlgraph/parlgraph/pkg/repo"
)

// Call is one recorded Run.
type Call struct {
	Cypher string
	Params map[string]any
}

type route struct {
	fragment string
	records  []*neo4j.Record
	err      error
}

// Opener answers Run calls from routes registered with On and Fail. The
// first route whose fragment occurs in the Cypher text wins; unmatched
// statements return no rows. Safe for concurrent use.
type Opener struct {
	mu     sync.Mutex
	routes []route
	calls  []Call
}

// New returns an empty Opener.
func New() *Opener { return &Opener{} }

// On answers statements containing fragment with records.
func (o *Opener) On(fragment string, records ...*neo4j.Record) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route{fragment: fragment, records: records})
	return o
}

// Fail makes statements containing fragment return err.
func (o *Opener) Fail(fragment string, err error) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route{fragment: fragment, err: err})
	return o
}

// Calls returns a copy of every Run so far.
func (o *Opener) Calls() []Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Call, len(o.calls))
	copy(out, o.calls)
	return out
}

// CallsMatching returns the recorded calls whose Cypher contains fragment.
func (o *Opener) CallsMatching(fragment string) []Call {
	var out []Call
	for _, c := range o.Calls() {
		if strings.Contains(c.Cypher, fragment) {
			out = append(out, c)
		}
	}
	return out
}

// OpenSession implements repo.Opener.
func (o *Opener) OpenSession(context.Context) repo.Session {
	return &session{o: o}
}

func (o *Opener) run(cypher string, params map[string]any) (repo.Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, Call{Cypher: cypher, Params: params})
	for _, r := range o.routes {
		if strings.Contains(cypher, r.fragment) {
			if r.err != nil {
				return nil, r.err
			}
			return &result{records: r.records, pos: -1}, nil
		}
	}
	return &result{pos: -1}, nil
}

type session struct {
	o *Opener
}

func (s *session) Run(_ context.Context, cypher string, params map[string]any) (repo.Result, error) {
	return s.o.run(cypher, params)
}

func (s *session) ReadTransaction(_ context.Context, work func(tx repo.Runner) (any, error)) (any, error) {
	return work(s)
}

func (s *session) Close(context.Context) error { return nil }

type result struct {
	records []*neo4j.Record
	pos     int
}

func (r *result) Next(context.Context) bool {
	r.pos++
	return r.pos < len(r.records)
}

func (r *result) Record() *neo4j.Record { return r.records[r.pos] }

func (r *result) Err() error { return nil }

// Row builds a record from alternating key, value pairs.
func Row(kv ...any) *neo4j.Record {
	rec := &neo4j.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Keys = append(rec.Keys, kv[i].(string))
		rec.Values = append(rec.Values, kv[i+1])
	}
	return rec
}

// Node builds a node value with the given properties.
func Node(props map[string]any, labels ...string) dbtype.Node {
	return dbtype.Node{Labels: labels, Props: props}
}
