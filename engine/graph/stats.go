package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/parlgraph/parlgraph/pkg/fn"
	"github.com/parlgraph/parlgraph/pkg/repo"
)

// Stats holds node counts by label and relationship counts by type.
type Stats struct {
	Nodes         map[string]int64 `json:"nodes"`
	Relationships map[string]int64 `json:"relationships"`
}

// Stats counts the graph's nodes and relationships.
func (g *GraphStore) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := fn.FanOut(ctx,
		func(ctx context.Context) error {
			var err error
			s.Nodes, err = g.NodeCounts(ctx)
			return err
		},
		func(ctx context.Context) error {
			var err error
			s.Relationships, err = g.RelationshipCounts(ctx)
			return err
		},
	)
	if err != nil {
		return Stats{}, err
	}
	return s, nil
}

// NodeCounts returns node counts grouped by label.
func (g *GraphStore) NodeCounts(ctx context.Context) (map[string]int64, error) {
	return g.groupCounts(ctx, "node counts", `MATCH (n) RETURN labels(n)[0] AS type, count(*) AS count`)
}

// RelationshipCounts returns relationship counts grouped by type.
func (g *GraphStore) RelationshipCounts(ctx context.Context) (map[string]int64, error) {
	return g.groupCounts(ctx, "relationship counts", `MATCH ()-[r]->() RETURN type(r) AS type, count(*) AS count`)
}

func (g *GraphStore) groupCounts(ctx context.Context, op, cypher string) (map[string]int64, error) {
	counts := make(map[string]int64)
	err := g.read(ctx, op, func(tx repo.Runner) error {
		return each(ctx, tx, cypher, nil, func(rec *neo4j.Record) error {
			if t := stringValue(rec, "type"); t != "" {
				counts[t] += intValue(rec, "count")
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
