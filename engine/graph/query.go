package graph

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/pkg/repo"
)

// Optional filters are passed as nil parameters and tested with
// "$p IS NULL OR ..." so every query has a single fixed text.

const legislatorMatch = `MATCH (l:Legislator)
WHERE ($text IS NULL OR toLower(l.name) CONTAINS $text OR toLower(coalesce(l.riding, '')) CONTAINS $text)
  AND ($currentOnly = false OR l.current = true)
  AND ($cabinetOnly = false OR coalesce(l.cabinet_role, '') <> '')
OPTIONAL MATCH (l)-[:MEMBER_OF]->(p:Party)
WITH l, head(collect(p.code)) AS party
WHERE $party IS NULL OR toLower(party) = toLower($party)
`

const billMatch = `MATCH (b:Bill)
WHERE ($text IS NULL OR toLower(b.number) CONTAINS $text OR toLower(coalesce(b.title, '')) CONTAINS $text)
  AND ($status IS NULL OR b.status = $status)
  AND ($session IS NULL OR b.session = $session)
  AND ($government IS NULL OR b.government = $government)
  AND ($chamber IS NULL OR toLower(b.chamber) = toLower($chamber))
  AND ($from IS NULL OR date(b.introduced) >= date($from))
  AND ($to IS NULL OR date(b.introduced) <= date($to))
`

const billOrder = `b.introduced IS NULL, b.introduced DESC, b.number ASC`

const statementMatch = `CALL db.index.fulltext.queryNodes($index, $query) YIELD node AS s, score
WHERE score > $minScore
  AND ($from IS NULL OR date(s.date) >= date($from))
  AND ($to IS NULL OR date(s.date) <= date($to))
`

func nullable(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func lowerText(s string) any {
	if v := nullable(s); v != nil {
		return strings.ToLower(v.(string))
	}
	return nil
}

func dateParam(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.DateOnly)
}

func pageParams(params map[string]any, p domain.Page) map[string]any {
	p = p.Normalize()
	params["offset"] = int64(p.Offset)
	params["limit"] = int64(p.Limit)
	return params
}

func legislatorParams(f domain.LegislatorFilter) map[string]any {
	return map[string]any{
		"text":        lowerText(f.Text),
		"party":       nullable(f.Party),
		"currentOnly": f.CurrentOnly,
		"cabinetOnly": f.CabinetOnly,
	}
}

func billParams(f domain.BillFilter) map[string]any {
	var government any
	switch f.Type {
	case domain.BillTypeGovernment:
		government = true
	case domain.BillTypePrivate:
		government = false
	}
	return map[string]any{
		"text":       lowerText(f.Text),
		"status":     nullable(f.Status),
		"session":    nullable(f.Session),
		"government": government,
		"chamber":    nullable(f.Chamber),
		"from":       dateParam(f.Introduced.From),
		"to":         dateParam(f.Introduced.To),
	}
}

func (g *GraphStore) statementParams(f domain.StatementFilter) map[string]any {
	return map[string]any{
		"index":    g.fullTextIndex,
		"query":    EscapeLucene(strings.TrimSpace(f.Text)),
		"minScore": domain.MinRelevance,
		"from":     dateParam(f.Date.From),
		"to":       dateParam(f.Date.To),
	}
}

// EscapeLucene escapes Lucene query syntax so user text is matched literally.
func EscapeLucene(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`+-&|!(){}[]^"~*?:\/`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SearchLegislators returns legislators ordered by name, then id.
func (g *GraphStore) SearchLegislators(ctx context.Context, f domain.LegislatorFilter) ([]domain.Legislator, error) {
	cypher := legislatorMatch + `RETURN l, party
ORDER BY l.name ASC, l.id ASC
SKIP $offset LIMIT $limit`
	out := []domain.Legislator{}
	err := g.read(ctx, "search legislators", func(tx repo.Runner) error {
		return each(ctx, tx, cypher, pageParams(legislatorParams(f), f.Page), func(rec *neo4j.Record) error {
			props, err := nodeProps(rec, "l")
			if err != nil {
				return err
			}
			l := legislatorFromProps(props)
			l.Party = stringValue(rec, "party")
			out = append(out, l)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountLegislators returns the total under the same filters, ignoring paging.
func (g *GraphStore) CountLegislators(ctx context.Context, f domain.LegislatorFilter) (int64, error) {
	return g.countQuery(ctx, "count legislators", legislatorMatch+`RETURN count(l) AS total`, "total", legislatorParams(f))
}

// SearchBills returns bills ordered by introduced date descending, then
// number. Bills without an introduced date sort last.
func (g *GraphStore) SearchBills(ctx context.Context, f domain.BillFilter) ([]domain.Bill, error) {
	cypher := billMatch + `WITH b ORDER BY ` + billOrder + ` SKIP $offset LIMIT $limit
OPTIONAL MATCH (s:Legislator)-[:SPONSORED]->(b)
WITH b, head(collect(s.id)) AS sponsor
RETURN b, sponsor
ORDER BY ` + billOrder
	out := []domain.Bill{}
	err := g.read(ctx, "search bills", func(tx repo.Runner) error {
		return each(ctx, tx, cypher, pageParams(billParams(f), f.Page), func(rec *neo4j.Record) error {
			b, err := billFromRecord(rec)
			if err != nil {
				return err
			}
			out = append(out, b)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountBills returns the total under the same filters, ignoring paging.
func (g *GraphStore) CountBills(ctx context.Context, f domain.BillFilter) (int64, error) {
	return g.countQuery(ctx, "count bills", billMatch+`RETURN count(b) AS total`, "total", billParams(f))
}

func billFromRecord(rec *neo4j.Record) (domain.Bill, error) {
	props, err := nodeProps(rec, "b")
	if err != nil {
		return domain.Bill{}, err
	}
	b := billFromProps(props)
	b.Sponsor = stringValue(rec, "sponsor")
	return b, nil
}

// StatementHit is a full-text match with its relevance score.
type StatementHit struct {
	domain.Statement
	Score float64 `json:"score"`
}

// SearchStatements runs a full-text search. Hits scoring at or below
// domain.MinRelevance are dropped; the rest are ordered by score, then date
// descending, then id.
func (g *GraphStore) SearchStatements(ctx context.Context, f domain.StatementFilter) ([]StatementHit, error) {
	cypher := statementMatch + `WITH s, score ORDER BY score DESC, s.date DESC, s.id ASC SKIP $offset LIMIT $limit
OPTIONAL MATCH (l:Legislator)-[:MADE]->(s)
OPTIONAL MATCH (s)-[:PART_OF]->(d:Document)
WITH s, score, head(collect(l.id)) AS legislator, head(collect(d.id)) AS document
RETURN s, score, legislator, document
ORDER BY score DESC, s.date DESC, s.id ASC`
	out := []StatementHit{}
	err := g.read(ctx, "search statements", func(tx repo.Runner) error {
		return each(ctx, tx, cypher, pageParams(g.statementParams(f), f.Page), func(rec *neo4j.Record) error {
			st, err := statementFromRecord(rec)
			if err != nil {
				return err
			}
			out = append(out, StatementHit{Statement: st, Score: floatValue(rec, "score")})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountStatements returns the number of hits above the relevance threshold.
func (g *GraphStore) CountStatements(ctx context.Context, f domain.StatementFilter) (int64, error) {
	return g.countQuery(ctx, "count statements", statementMatch+`RETURN count(s) AS total`, "total", g.statementParams(f))
}

func statementFromRecord(rec *neo4j.Record) (domain.Statement, error) {
	props, err := nodeProps(rec, "s")
	if err != nil {
		return domain.Statement{}, err
	}
	st := statementFromProps(props)
	st.LegislatorID = stringValue(rec, "legislator")
	st.DocumentID = stringValue(rec, "document")
	return st, nil
}

// GetLegislator looks up a legislator by id.
func (g *GraphStore) GetLegislator(ctx context.Context, id string) (domain.Legislator, error) {
	const cypher = `MATCH (l:Legislator {id: $id})
OPTIONAL MATCH (l)-[:MEMBER_OF]->(p:Party)
RETURN l, head(collect(p.code)) AS party`
	var (
		out   domain.Legislator
		found bool
	)
	err := g.read(ctx, "get legislator", func(tx repo.Runner) error {
		var err error
		found, err = single(ctx, tx, cypher, map[string]any{"id": id}, func(rec *neo4j.Record) error {
			props, err := nodeProps(rec, "l")
			if err != nil || props == nil {
				return err
			}
			out = legislatorFromProps(props)
			out.Party = stringValue(rec, "party")
			return nil
		})
		return err
	})
	if err != nil {
		return domain.Legislator{}, err
	}
	if !found || out.ID == "" {
		return domain.Legislator{}, domain.NotFound("legislator", id)
	}
	return out, nil
}

// GetBill looks up a bill by number within a session.
func (g *GraphStore) GetBill(ctx context.Context, number, session string) (domain.Bill, error) {
	const cypher = `MATCH (b:Bill {number: $number, session: $session})
OPTIONAL MATCH (s:Legislator)-[:SPONSORED]->(b)
RETURN b, head(collect(s.id)) AS sponsor
LIMIT 1`
	var (
		out   domain.Bill
		found bool
	)
	err := g.read(ctx, "get bill", func(tx repo.Runner) error {
		var err error
		found, err = single(ctx, tx, cypher, map[string]any{"number": number, "session": session}, func(rec *neo4j.Record) error {
			var err error
			out, err = billFromRecord(rec)
			return err
		})
		return err
	})
	if err != nil {
		return domain.Bill{}, err
	}
	if !found || out.Number == "" {
		return domain.Bill{}, domain.NotFound("bill", session+"/"+number)
	}
	return out, nil
}

// GetParty looks up a party by code.
func (g *GraphStore) GetParty(ctx context.Context, code string) (domain.Party, error) {
	var out domain.Party
	err := g.guard(ctx, "get party", func(ctx context.Context) error {
		var err error
		out, err = g.parties.Get(ctx, code)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Party{}, domain.NotFound("party", code)
	}
	return out, err
}

// GetCommittee looks up a committee by code.
func (g *GraphStore) GetCommittee(ctx context.Context, code string) (domain.Committee, error) {
	var out domain.Committee
	err := g.guard(ctx, "get committee", func(ctx context.Context) error {
		var err error
		out, err = g.committees.Get(ctx, code)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Committee{}, domain.NotFound("committee", code)
	}
	return out, err
}

// ListParties returns every party ordered by name.
func (g *GraphStore) ListParties(ctx context.Context) ([]domain.Party, error) {
	var out []domain.Party
	err := g.guard(ctx, "list parties", func(ctx context.Context) error {
		var err error
		out, err = g.parties.List(ctx, repo.ListOpts{Limit: domain.MaxLimit})
		return err
	})
	return out, err
}

// ListCommittees returns every committee ordered by name.
func (g *GraphStore) ListCommittees(ctx context.Context) ([]domain.Committee, error) {
	var out []domain.Committee
	err := g.guard(ctx, "list committees", func(ctx context.Context) error {
		var err error
		out, err = g.committees.List(ctx, repo.ListOpts{Limit: domain.MaxLimit})
		return err
	})
	return out, err
}
