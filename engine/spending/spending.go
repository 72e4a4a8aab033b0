// Package spending aggregates legislator expenses into per-quarter,
// per-party trends.
package spending

import (
	"cmp"
	"context"
	"slices"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/parlgraph/parlgraph/pkg/fn"
)

// Store is the subset of the graph store the aggregator reads.
type Store interface {
	PartySpending(ctx context.Context, fiscalYear *int) ([]graph.SpendingRow, error)
}

// PartyQuarter is one party's spending in one quarter.
type PartyQuarter struct {
	Party        string  `json:"party"`
	PartyName    string  `json:"party_name,omitempty"`
	Total        float64 `json:"total"`
	MemberCount  int64   `json:"member_count"`
	AveragePerMP float64 `json:"average_per_mp"`
}

// Quarter bundles every party that spent in one fiscal quarter.
type Quarter struct {
	FiscalYear      int            `json:"fiscal_year"`
	Quarter         int            `json:"quarter"`
	Parties         []PartyQuarter `json:"parties"`
	TotalAllParties float64        `json:"total_all_parties"`
	MemberCount     int64          `json:"member_count"`
	AveragePerMP    float64        `json:"average_per_mp"`
}

// Trends is the result of a trend query.
type Trends struct {
	FiscalYear *int      `json:"fiscal_year,omitempty"`
	Quarters   []Quarter `json:"quarters"`
}

// Aggregator computes spending trends.
type Aggregator struct {
	store Store
}

// New creates an Aggregator.
func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Trends returns spending grouped by quarter and party. A nil year covers
// every fiscal year.
func (a *Aggregator) Trends(ctx context.Context, fiscalYear *int) (Trends, error) {
	if err := domain.ValidateFiscalYear(fiscalYear); err != nil {
		return Trends{}, err
	}
	rows, err := a.store.PartySpending(ctx, fiscalYear)
	if err != nil {
		return Trends{}, err
	}
	return Trends{FiscalYear: fiscalYear, Quarters: Summarize(rows)}, nil
}

type quarterKey struct {
	year, quarter int
}

// Summarize groups rows into quarters ordered by (fiscal year, quarter).
// Within a quarter parties are ordered by total descending, then code. A
// legislator belongs to one party, so the quarter member count is the sum
// of the party member counts.
func Summarize(rows []graph.SpendingRow) []Quarter {
	groups := fn.GroupBy(rows, func(r graph.SpendingRow) quarterKey {
		return quarterKey{r.FiscalYear, r.Quarter}
	})
	keys := make([]quarterKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b quarterKey) int {
		return cmp.Or(cmp.Compare(a.year, b.year), cmp.Compare(a.quarter, b.quarter))
	})

	out := make([]Quarter, 0, len(keys))
	for _, k := range keys {
		q := Quarter{FiscalYear: k.year, Quarter: k.quarter}
		for _, r := range groups[k] {
			q.Parties = append(q.Parties, PartyQuarter{
				Party:        r.Party,
				PartyName:    r.PartyName,
				Total:        r.Total,
				MemberCount:  r.Members,
				AveragePerMP: fn.Ratio(r.Total, float64(r.Members)),
			})
			q.MemberCount += r.Members
		}
		slices.SortFunc(q.Parties, func(a, b PartyQuarter) int {
			return cmp.Or(cmp.Compare(b.Total, a.Total), cmp.Compare(a.Party, b.Party))
		})
		q.TotalAllParties = fn.SumBy(q.Parties, func(p PartyQuarter) float64 { return p.Total })
		q.AveragePerMP = fn.Ratio(q.TotalAllParties, float64(q.MemberCount))
		out = append(out, q)
	}
	return out
}
