package graph

import (
	"context"
	"testing"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/pkg/repo/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildThread(t *testing.T) {
	stmts := []domain.Statement{
		{ID: "c", ParentID: "a", Sequence: 3},
		{ID: "a", Sequence: 1},
		{ID: "b", ParentID: "a", Sequence: 2},
		{ID: "d", ParentID: "b", Sequence: 4},
		{ID: "e", ParentID: "missing", Sequence: 5},
	}
	th := BuildThread("t1", stmts)

	assert.Equal(t, 5, th.Statements)
	require.Len(t, th.Roots, 2)
	assert.Equal(t, "a", th.Roots[0].ID)
	assert.Equal(t, "e", th.Roots[1].ID)
	require.Len(t, th.Roots[0].Replies, 2)
	assert.Equal(t, "b", th.Roots[0].Replies[0].ID)
	assert.Equal(t, "c", th.Roots[0].Replies[1].ID)
	assert.Equal(t, "d", th.Roots[0].Replies[0].Replies[0].ID)
}

func TestBuildThread_SelfParentIsRoot(t *testing.T) {
	th := BuildThread("t", []domain.Statement{{ID: "x", ParentID: "x"}})
	require.Len(t, th.Roots, 1)
	assert.Empty(t, th.Roots[0].Replies)
}

func reachable(nodes []*ThreadNode) int {
	n := 0
	for _, node := range nodes {
		n += 1 + reachable(node.Replies)
	}
	return n
}

func TestBuildThread_ParentCycles(t *testing.T) {
	tests := []struct {
		name  string
		stmts []domain.Statement
		roots []string
	}{
		{
			name: "two statements pointing at each other",
			stmts: []domain.Statement{
				{ID: "root", Sequence: 1},
				{ID: "a", ParentID: "b", Sequence: 2},
				{ID: "b", ParentID: "a", Sequence: 3},
			},
			roots: []string{"root", "a"},
		},
		{
			name: "three statement loop with a tail",
			stmts: []domain.Statement{
				{ID: "x", ParentID: "z", Sequence: 4},
				{ID: "y", ParentID: "x", Sequence: 5},
				{ID: "z", ParentID: "y", Sequence: 6},
				{ID: "tail", ParentID: "y", Sequence: 7},
			},
			roots: []string{"x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := BuildThread("t", tt.stmts)
			assert.Equal(t, len(tt.stmts), th.Statements)
			assert.Equal(t, th.Statements, reachable(th.Roots))
			var roots []string
			for _, r := range th.Roots {
				roots = append(roots, r.ID)
			}
			assert.Equal(t, tt.roots, roots)
		})
	}
}

func TestBuildThread_DuplicateIDsKeptOnce(t *testing.T) {
	th := BuildThread("t", []domain.Statement{{ID: "a", Sequence: 1}, {ID: "a", Sequence: 1}, {ID: "b", ParentID: "a", Sequence: 2}})
	assert.Equal(t, 2, th.Statements)
	assert.Equal(t, 2, reachable(th.Roots))
}

func TestStatementThread_EmptyIsNotFound(t *testing.T) {
	_, err := NewWithOpener(repotest.New()).StatementThread(context.Background(), "t404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatementThread(t *testing.T) {
	o := repotest.New().On("thread_id: $thread",
		repotest.Row("s", repotest.Node(map[string]any{"id": "a", "sequence": int64(1)}), "legislator", "m1", "document", "d1"),
		repotest.Row("s", repotest.Node(map[string]any{"id": "b", "parent_id": "a", "sequence": int64(2)}), "legislator", "m2", "document", "d1"),
	)
	th, err := NewWithOpener(o).StatementThread(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, th.Roots, 1)
	assert.Equal(t, "m1", th.Roots[0].LegislatorID)
	assert.Equal(t, "m2", th.Roots[0].Replies[0].LegislatorID)
}
