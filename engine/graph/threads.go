package graph

import (
	"cmp"
	"context"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/pkg/repo"
)

// ThreadNode is a statement and the replies to it.
type ThreadNode struct {
	domain.Statement
	Replies []*ThreadNode `json:"replies,omitempty"`
}

// Thread is a reassembled reply chain.
type Thread struct {
	ID         string        `json:"id"`
	Statements int           `json:"statement_count"`
	Roots      []*ThreadNode `json:"roots"`
}

// StatementThread loads every statement of a thread and rebuilds the reply
// tree. A thread with no statements is not found.
func (g *GraphStore) StatementThread(ctx context.Context, threadID string) (Thread, error) {
	const cypher = `MATCH (s:Statement {thread_id: $thread})
OPTIONAL MATCH (l:Legislator)-[:MADE]->(s)
OPTIONAL MATCH (s)-[:PART_OF]->(d:Document)
WITH s, head(collect(l.id)) AS legislator, head(collect(d.id)) AS document
RETURN s, legislator, document
ORDER BY s.sequence ASC, s.id ASC`
	var stmts []domain.Statement
	err := g.read(ctx, "statement thread", func(tx repo.Runner) error {
		return each(ctx, tx, cypher, map[string]any{"thread": threadID}, func(rec *neo4j.Record) error {
			st, err := statementFromRecord(rec)
			if err != nil {
				return err
			}
			stmts = append(stmts, st)
			return nil
		})
	})
	if err != nil {
		return Thread{}, err
	}
	if len(stmts) == 0 {
		return Thread{}, domain.NotFound("thread", threadID)
	}
	return BuildThread(threadID, stmts), nil
}

// BuildThread links statements by ParentID. Statements whose parent is
// missing from the set become roots, as does the earliest statement of any
// parent_id cycle, so every statement is reachable from Roots exactly once.
// Siblings are ordered by sequence, then id. Duplicate ids keep the first.
func BuildThread(threadID string, stmts []domain.Statement) Thread {
	sorted := slices.Clone(stmts)
	slices.SortStableFunc(sorted, func(a, b domain.Statement) int {
		return cmp.Or(cmp.Compare(a.Sequence, b.Sequence), cmp.Compare(a.ID, b.ID))
	})

	nodes := make(map[string]*ThreadNode, len(sorted))
	sorted = slices.DeleteFunc(sorted, func(st domain.Statement) bool {
		if _, dup := nodes[st.ID]; dup {
			return true
		}
		nodes[st.ID] = &ThreadNode{Statement: st}
		return false
	})
	order := make(map[string]int, len(sorted))
	for i, st := range sorted {
		order[st.ID] = i
	}
	parent := make(map[string]string, len(sorted))
	for _, st := range sorted {
		if _, ok := nodes[st.ParentID]; ok && st.ParentID != st.ID {
			parent[st.ID] = st.ParentID
		}
	}
	breakCycles(sorted, parent, order)

	t := Thread{ID: threadID, Statements: len(sorted), Roots: []*ThreadNode{}}
	for _, st := range sorted {
		n := nodes[st.ID]
		if p, ok := parent[st.ID]; ok {
			nodes[p].Replies = append(nodes[p].Replies, n)
			continue
		}
		t.Roots = append(t.Roots, n)
	}
	return t
}

// breakCycles removes the parent link of the earliest statement in every
// cycle. Each statement has at most one parent, so a walk up from any
// statement meets at most one cycle.
func breakCycles(sorted []domain.Statement, parent map[string]string, order map[string]int) {
	for _, st := range sorted {
		seen := map[string]bool{}
		for id, ok := st.ID, true; ok; id, ok = parent[id] {
			if !seen[id] {
				seen[id] = true
				continue
			}
			cut := id
			for c := parent[id]; c != id; c = parent[c] {
				if order[c] < order[cut] {
					cut = c
				}
			}
			delete(parent, cut)
			break
		}
	}
}
