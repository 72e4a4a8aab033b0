package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/pkg/fn"
	"github.com/parlgraph/parlgraph/pkg/repo"
)

// Per-legislator sub-traversals. Each one is independent so the scorecard
// engine can run them concurrently; all of them tolerate zero matches.

// Sponsorship is the count of sponsored bills and the passed subset.
type Sponsorship struct {
	Sponsored int64
	Passed    int64
}

// PetitionTotals aggregates sponsored petitions.
type PetitionTotals struct {
	Count      int64
	Signatures int64
}

// VoteAlignment describes one vote cast by a legislator: how many
// same-party colleagues also voted, and how many of them took the same
// position.
type VoteAlignment struct {
	VoteID     string
	Position   domain.Position
	Agree      int64
	Colleagues int64
}

// Sponsorship counts bills sponsored by id and those with status Passed.
func (g *GraphStore) Sponsorship(ctx context.Context, id string) (Sponsorship, error) {
	const cypher = `MATCH (l:Legislator {id: $id})
OPTIONAL MATCH (l)-[:SPONSORED]->(b:Bill)
RETURN count(DISTINCT b) AS sponsored,
       count(DISTINCT CASE WHEN b.status = $passed THEN b END) AS passed`
	var out Sponsorship
	err := g.read(ctx, "sponsorship", func(tx repo.Runner) error {
		_, err := single(ctx, tx, cypher, map[string]any{"id": id, "passed": domain.StatusPassed}, func(rec *neo4j.Record) error {
			out = Sponsorship{Sponsored: intValue(rec, "sponsored"), Passed: intValue(rec, "passed")}
			return nil
		})
		return err
	})
	return out, err
}

// VotesCast counts distinct votes with a ballot by id.
func (g *GraphStore) VotesCast(ctx context.Context, id string) (int64, error) {
	return g.countQuery(ctx, "votes cast", `MATCH (:Legislator {id: $id})-[:VOTED]->(v:Vote)
RETURN count(DISTINCT v) AS total`, "total", map[string]any{"id": id})
}

// TotalVotes counts every recorded vote in the system.
func (g *GraphStore) TotalVotes(ctx context.Context) (int64, error) {
	return g.countQuery(ctx, "total votes", `MATCH (v:Vote) RETURN count(v) AS total`, "total", nil)
}

// Petitions totals the petitions id sponsored and their signatures.
func (g *GraphStore) Petitions(ctx context.Context, id string) (PetitionTotals, error) {
	const cypher = `MATCH (:Legislator {id: $id})-[:SPONSORED]->(p:Petition)
WITH DISTINCT p
RETURN count(p) AS petitions, sum(coalesce(p.signatures, 0)) AS signatures`
	var out PetitionTotals
	err := g.read(ctx, "petitions", func(tx repo.Runner) error {
		_, err := single(ctx, tx, cypher, map[string]any{"id": id}, func(rec *neo4j.Record) error {
			out = PetitionTotals{Count: intValue(rec, "petitions"), Signatures: intValue(rec, "signatures")}
			return nil
		})
		return err
	})
	return out, err
}

// Expenses sums id's expenses for one fiscal year.
func (g *GraphStore) Expenses(ctx context.Context, id string, fiscalYear int) (float64, error) {
	const cypher = `MATCH (:Legislator {id: $id})-[:INCURRED]->(e:Expense)
WHERE e.fiscal_year = $year
RETURN coalesce(sum(toFloat(e.amount)), 0.0) AS total`
	var total float64
	err := g.read(ctx, "expenses", func(tx repo.Runner) error {
		_, err := single(ctx, tx, cypher, map[string]any{"id": id, "year": int64(fiscalYear)}, func(rec *neo4j.Record) error {
			total = floatValue(rec, "total")
			return nil
		})
		return err
	})
	return total, err
}

// LobbyistMeetings counts distinct lobbyists who met with id.
func (g *GraphStore) LobbyistMeetings(ctx context.Context, id string) (int64, error) {
	return g.countQuery(ctx, "lobbyist meetings", `MATCH (lb:Lobbyist)-[:MET_WITH]->(:Legislator {id: $id})
RETURN count(DISTINCT lb) AS total`, "total", map[string]any{"id": id})
}

// Interjections counts id's interjections under headings containing
// marker, case-insensitively.
func (g *GraphStore) Interjections(ctx context.Context, id, marker string) (int64, error) {
	return g.countQuery(ctx, "interjections", `MATCH (:Legislator {id: $id})-[:MADE]->(s:Statement)
WHERE s.type = $type AND toLower(coalesce(s.heading, '')) CONTAINS toLower($marker)
RETURN count(DISTINCT s) AS total`, "total", map[string]any{
		"id":     id,
		"type":   domain.StatementInterjection,
		"marker": marker,
	})
}

// positionCypher is a Cypher expression normalising the ballot text in expr
// with the same spellings as domain.ParsePosition. Unknown text is null.
func positionCypher(expr string) string {
	spellings := domain.PositionSpellings()
	var b strings.Builder
	fmt.Fprintf(&b, "CASE toLower(trim(%s))", expr)
	for _, s := range fn.SortedKeys(spellings) {
		fmt.Fprintf(&b, " WHEN '%s' THEN '%s'", s, spellings[s])
	}
	b.WriteString(" END")
	return b.String()
}

var voteAlignmentsCypher = `MATCH (l:Legislator {id: $id})-[lv:VOTED]->(v:Vote)
WITH l, v, ` + positionCypher("lv.position") + ` AS position
WHERE position IS NOT NULL
OPTIONAL MATCH (l)-[:MEMBER_OF]->(p:Party)<-[:MEMBER_OF]-(c:Legislator)-[cv:VOTED]->(v)
WHERE c <> l
WITH v, position, c, head(collect(` + positionCypher("cv.position") + `)) AS cpos
WITH v, position,
     count(cpos) AS colleagues,
     count(CASE WHEN cpos = position THEN 1 END) AS agree
RETURN v.id AS vote, position, colleagues, agree
ORDER BY vote ASC`

// VoteAlignments returns, for every vote id cast, the positions of
// same-party colleagues who also voted on it. Ordered by vote id. Ballots
// whose text is not a recognised position are ignored on both sides.
func (g *GraphStore) VoteAlignments(ctx context.Context, id string) ([]VoteAlignment, error) {
	out := []VoteAlignment{}
	err := g.read(ctx, "vote alignments", func(tx repo.Runner) error {
		return each(ctx, tx, voteAlignmentsCypher, map[string]any{"id": id}, func(rec *neo4j.Record) error {
			pos, ok := domain.ParsePosition(stringValue(rec, "position"))
			if !ok {
				return nil
			}
			out = append(out, VoteAlignment{
				VoteID:     stringValue(rec, "vote"),
				Position:   pos,
				Agree:      intValue(rec, "agree"),
				Colleagues: intValue(rec, "colleagues"),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CommitteeMemberships counts committees id serves on.
func (g *GraphStore) CommitteeMemberships(ctx context.Context, id string) (int64, error) {
	return g.countQuery(ctx, "committee memberships", `MATCH (:Legislator {id: $id})-[:SERVES_ON]->(c:Committee)
RETURN count(DISTINCT c) AS total`, "total", map[string]any{"id": id})
}

// CommitteeStatements counts id's statements recorded in committee evidence.
func (g *GraphStore) CommitteeStatements(ctx context.Context, id string) (int64, error) {
	return g.countQuery(ctx, "committee statements", `MATCH (:Legislator {id: $id})-[:MADE]->(s:Statement)-[:PART_OF]->(d:Document)
WHERE d.type = $type
RETURN count(DISTINCT s) AS total`, "total", map[string]any{"id": id, "type": domain.DocumentCommittee})
}

// CurrentMembers returns the ids of current legislators in party code,
// ordered by id.
func (g *GraphStore) CurrentMembers(ctx context.Context, code string) ([]string, error) {
	const cypher = `MATCH (l:Legislator)-[:MEMBER_OF]->(:Party {code: $code})
WHERE l.current = true
RETURN DISTINCT l.id AS id
ORDER BY id ASC`
	out := []string{}
	err := g.read(ctx, "current members", func(tx repo.Runner) error {
		return each(ctx, tx, cypher, map[string]any{"code": code}, func(rec *neo4j.Record) error {
			out = append(out, stringValue(rec, "id"))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
