package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/pkg/repo"
)

// ConflictRow is one (legislator, organization, bill) triple and the number
// of lobbying/donation/vote/contract path instances connecting them.
type ConflictRow struct {
	LegislatorID     string `json:"legislator_id"`
	LegislatorName   string `json:"legislator_name"`
	Party            string `json:"party"`
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	BillID           string `json:"bill_id"`
	BillNumber       string `json:"bill_number"`
	BillSession      string `json:"bill_session"`
	BillTitle        string `json:"bill_title"`
	Score            int64  `json:"suspicion_score"`
}

var conflictsCypher = `MATCH (o:Organization)-[:LOBBIED_ON]->(b:Bill),
      (o)-[:DONATED_TO]->(p:Party)<-[:MEMBER_OF]-(l:Legislator),
      (l)-[lv:VOTED]->(:Vote)-[:CONCERNS]->(b),
      (o)-[:RECEIVED]->(:Contract)
WHERE ` + positionCypher("lv.position") + ` = $yea
WITH l, o, b, count(*) AS score, min(p.code) AS party
RETURN l.id AS legislator, l.name AS legislator_name, party,
       o.id AS organization, o.name AS organization_name,
       b.id AS bill, b.number AS bill_number, b.session AS bill_session, b.title AS bill_title,
       score
ORDER BY score DESC, legislator_name ASC, organization_name ASC, bill_number ASC,
         legislator ASC, organization ASC, bill ASC
LIMIT $limit`

// Conflicts returns the highest scoring (legislator, organization, bill)
// triples, at most limit of them. A legislator in several parties the
// organization donated to still yields one row, reporting the lowest party
// code.
func (g *GraphStore) Conflicts(ctx context.Context, limit int) ([]ConflictRow, error) {
	out := []ConflictRow{}
	params := map[string]any{"limit": int64(limit), "yea": string(domain.PositionYea)}
	err := g.read(ctx, "conflicts", func(tx repo.Runner) error {
		return each(ctx, tx, conflictsCypher, params, func(rec *neo4j.Record) error {
			out = append(out, ConflictRow{
				LegislatorID:     stringValue(rec, "legislator"),
				LegislatorName:   stringValue(rec, "legislator_name"),
				Party:            stringValue(rec, "party"),
				OrganizationID:   stringValue(rec, "organization"),
				OrganizationName: stringValue(rec, "organization_name"),
				BillID:           stringValue(rec, "bill"),
				BillNumber:       stringValue(rec, "bill_number"),
				BillSession:      stringValue(rec, "bill_session"),
				BillTitle:        stringValue(rec, "bill_title"),
				Score:            intValue(rec, "score"),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SpendingRow is the expense total of one party in one fiscal quarter.
type SpendingRow struct {
	FiscalYear int
	Quarter    int
	Party      string
	PartyName  string
	Total      float64
	Members    int64
}

// PartySpending groups expenses by fiscal year, quarter and party. A nil
// year covers every year.
func (g *GraphStore) PartySpending(ctx context.Context, fiscalYear *int) ([]SpendingRow, error) {
	const cypher = `MATCH (p:Party)<-[:MEMBER_OF]-(l:Legislator)-[:INCURRED]->(e:Expense)
WHERE $year IS NULL OR e.fiscal_year = $year
WITH e.fiscal_year AS year, e.quarter AS quarter, p,
     sum(toFloat(e.amount)) AS total, count(DISTINCT l) AS members
RETURN year, quarter, p.code AS party, p.name AS party_name, total, members
ORDER BY year ASC, quarter ASC, total DESC, party ASC`
	var year any
	if fiscalYear != nil {
		year = int64(*fiscalYear)
	}
	out := []SpendingRow{}
	err := g.read(ctx, "party spending", func(tx repo.Runner) error {
		return each(ctx, tx, cypher, map[string]any{"year": year}, func(rec *neo4j.Record) error {
			out = append(out, SpendingRow{
				FiscalYear: int(intValue(rec, "year")),
				Quarter:    int(intValue(rec, "quarter")),
				Party:      stringValue(rec, "party"),
				PartyName:  stringValue(rec, "party_name"),
				Total:      floatValue(rec, "total"),
				Members:    intValue(rec, "members"),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MeetingActivity is one committee meeting with its evidence volume.
type MeetingActivity struct {
	ID         string
	Date       time.Time
	Documents  int64
	Statements int64
}

// CommitteeMeetings returns every meeting held by code with its evidence
// document and statement counts, ordered by date.
func (g *GraphStore) CommitteeMeetings(ctx context.Context, code string) ([]MeetingActivity, error) {
	const cypher = `MATCH (:Committee {code: $code})-[:HELD]->(m:Meeting)
OPTIONAL MATCH (m)-[:HAS_EVIDENCE]->(d:Document)
OPTIONAL MATCH (s:Statement)-[:PART_OF]->(d)
WITH m, count(DISTINCT d) AS documents, count(DISTINCT s) AS statements
RETURN m.id AS id, m.date AS date, documents, statements
ORDER BY date ASC, id ASC`
	out := []MeetingActivity{}
	err := g.read(ctx, "committee meetings", func(tx repo.Runner) error {
		return each(ctx, tx, cypher, map[string]any{"code": code}, func(rec *neo4j.Record) error {
			out = append(out, MeetingActivity{
				ID:         stringValue(rec, "id"),
				Date:       timeValue(rec, "date"),
				Documents:  intValue(rec, "documents"),
				Statements: intValue(rec, "statements"),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CommitteeRoster is the membership and workload of one committee.
type CommitteeRoster struct {
	Members     int64
	ActiveBills int64
}

// CommitteeRoster counts code's members and referred bills still before it.
func (g *GraphStore) CommitteeRoster(ctx context.Context, code string) (CommitteeRoster, error) {
	const cypher = `MATCH (c:Committee {code: $code})
OPTIONAL MATCH (l:Legislator)-[:SERVES_ON]->(c)
WITH c, count(DISTINCT l) AS members
OPTIONAL MATCH (b:Bill)-[:REFERRED_TO]->(c)
WHERE b.status IN $active
RETURN members, count(DISTINCT b) AS active_bills`
	var out CommitteeRoster
	err := g.read(ctx, "committee roster", func(tx repo.Runner) error {
		_, err := single(ctx, tx, cypher, map[string]any{"code": code, "active": domain.ActiveCommitteeStatuses}, func(rec *neo4j.Record) error {
			out = CommitteeRoster{Members: intValue(rec, "members"), ActiveBills: intValue(rec, "active_bills")}
			return nil
		})
		return err
	})
	return out, err
}
