package graph

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/pkg/repo"
)

// OrganizationLobbying is one organization's registrations on a bill.
type OrganizationLobbying struct {
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Industry       string    `json:"industry,omitempty"`
	Registrations  int64     `json:"registrations"`
	Lobbyists      []string  `json:"lobbyists"`
	FirstContact   time.Time `json:"first_contact,omitzero"`
	LastContact    time.Time `json:"last_contact,omitzero"`
}

// LobbyingActivity summarizes every lobbying registration against a bill.
type LobbyingActivity struct {
	Bill           domain.Bill            `json:"bill"`
	Organizations  int64                  `json:"organization_count"`
	Lobbyists      int64                  `json:"lobbyist_count"`
	Registrations  int64                  `json:"registration_count"`
	FirstContact   time.Time              `json:"first_contact,omitzero"`
	LastContact    time.Time              `json:"last_contact,omitzero"`
	ByOrganization []OrganizationLobbying `json:"organizations"`
}

// BillLobbyingActivity aggregates LOBBIED_ON registrations for a bill. An
// unknown bill is not found; a bill nobody lobbied on has zero counts.
func (g *GraphStore) BillLobbyingActivity(ctx context.Context, number, session string) (LobbyingActivity, error) {
	bill, err := g.GetBill(ctx, number, session)
	if err != nil {
		return LobbyingActivity{}, err
	}

	const cypher = `MATCH (o:Organization)-[r:LOBBIED_ON]->(:Bill {number: $number, session: $session})
WITH o, count(r) AS registrations, min(r.first_contact) AS first, max(r.last_contact) AS last
OPTIONAL MATCH (lb:Lobbyist)-[:REPRESENTS]->(o)
WITH o, registrations, first, last, collect(DISTINCT lb.name) AS lobbyists
RETURN o.id AS id, o.name AS name, o.industry AS industry, registrations, first, last, lobbyists
ORDER BY registrations DESC, name ASC, id ASC`

	orgs := []OrganizationLobbying{}
	err = g.read(ctx, "bill lobbying", func(tx repo.Runner) error {
		return each(ctx, tx, cypher, map[string]any{"number": number, "session": session}, func(rec *neo4j.Record) error {
			lobbyists := asStrings(value(rec, "lobbyists"))
			slices.Sort(lobbyists)
			orgs = append(orgs, OrganizationLobbying{
				OrganizationID: stringValue(rec, "id"),
				Name:           stringValue(rec, "name"),
				Industry:       stringValue(rec, "industry"),
				Registrations:  intValue(rec, "registrations"),
				Lobbyists:      lobbyists,
				FirstContact:   timeValue(rec, "first"),
				LastContact:    timeValue(rec, "last"),
			})
			return nil
		})
	})
	if err != nil {
		return LobbyingActivity{}, err
	}
	return SummarizeLobbying(bill, orgs), nil
}

// SummarizeLobbying derives the bill-level totals from the per-organization
// rows. Lobbyists are counted once even when they represent several
// organizations.
func SummarizeLobbying(bill domain.Bill, orgs []OrganizationLobbying) LobbyingActivity {
	out := LobbyingActivity{
		Bill:           bill,
		Organizations:  int64(len(orgs)),
		ByOrganization: orgs,
	}
	seen := make(map[string]struct{})
	for _, o := range orgs {
		out.Registrations += o.Registrations
		for _, name := range o.Lobbyists {
			seen[strings.ToLower(name)] = struct{}{}
		}
		if !o.FirstContact.IsZero() && (out.FirstContact.IsZero() || o.FirstContact.Before(out.FirstContact)) {
			out.FirstContact = o.FirstContact
		}
		if o.LastContact.After(out.LastContact) {
			out.LastContact = o.LastContact
		}
	}
	out.Lobbyists = int64(len(seen))
	return out
}
