// Package baseline averages scorecards across a party's current members.
package baseline

import (
	"context"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/scorecard"
	"github.com/parlgraph/parlgraph/pkg/fn"
)

// DefaultWorkers bounds concurrent member scorecards.
const DefaultWorkers = 8

// Store is the subset of the graph store the calculator reads.
type Store interface {
	GetParty(ctx context.Context, code string) (domain.Party, error)
	CurrentMembers(ctx context.Context, code string) ([]string, error)
}

// Scorer computes one member's scorecard.
type Scorer interface {
	Compute(ctx context.Context, id string) (scorecard.Scorecard, error)
}

// Baseline is the mean of each metric across a party's current members.
type Baseline struct {
	Party                   domain.Party `json:"party"`
	MemberCount             int          `json:"member_count"`
	VotingParticipationRate float64      `json:"avg_voting_participation_rate"`
	PartyDisciplineScore    float64      `json:"avg_party_discipline_score"`
	LegislativeSuccessRate  float64      `json:"avg_legislative_success_rate"`
	CommitteeActivityIndex  float64      `json:"avg_committee_activity_index"`
	BillsSponsored          float64      `json:"avg_bills_sponsored"`
	BillsPassed             float64      `json:"avg_bills_passed"`
	CurrentYearExpenses     float64      `json:"avg_current_year_expenses"`
}

// Calculator computes party baselines.
type Calculator struct {
	store   Store
	scorer  Scorer
	workers int
}

// New creates a Calculator. workers <= 0 uses DefaultWorkers.
func New(store Store, scorer Scorer, workers int) *Calculator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Calculator{store: store, scorer: scorer, workers: workers}
}

// Baseline computes the baseline of party code. Any member failure
// abandons the whole baseline.
func (c *Calculator) Baseline(ctx context.Context, code string) (Baseline, error) {
	party, err := c.store.GetParty(ctx, code)
	if err != nil {
		return Baseline{}, err
	}
	ids, err := c.store.CurrentMembers(ctx, code)
	if err != nil {
		return Baseline{}, err
	}
	cards, err := fn.ParMap(ctx, ids, c.workers, c.scorer.Compute)
	if err != nil {
		return Baseline{}, err
	}
	b := Average(cards)
	b.Party = party
	return b, nil
}

// Average returns the arithmetic mean of each metric. No scorecards yields
// all zeros.
func Average(cards []scorecard.Scorecard) Baseline {
	n := float64(len(cards))
	mean := func(f func(scorecard.Scorecard) float64) float64 {
		return fn.Ratio(fn.SumBy(cards, f), n)
	}
	return Baseline{
		MemberCount:             len(cards),
		VotingParticipationRate: mean(func(s scorecard.Scorecard) float64 { return s.VotingParticipationRate }),
		PartyDisciplineScore:    mean(func(s scorecard.Scorecard) float64 { return s.PartyDisciplineScore }),
		LegislativeSuccessRate:  mean(func(s scorecard.Scorecard) float64 { return s.LegislativeSuccessRate }),
		CommitteeActivityIndex:  mean(func(s scorecard.Scorecard) float64 { return s.CommitteeActivityIndex }),
		BillsSponsored:          mean(func(s scorecard.Scorecard) float64 { return float64(s.BillsSponsored) }),
		BillsPassed:             mean(func(s scorecard.Scorecard) float64 { return float64(s.BillsPassed) }),
		CurrentYearExpenses:     mean(func(s scorecard.Scorecard) float64 { return s.CurrentYearExpenses }),
	}
}
