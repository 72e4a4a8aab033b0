// Package scorecard computes per-legislator accountability scorecards from
// independent graph traversals.
package scorecard

import (
	"context"
	"time"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/parlgraph/parlgraph/pkg/fn"
)

// DefaultQuestionPeriodMarker is the heading text that identifies the oral
// question period.
const DefaultQuestionPeriodMarker = "Oral Questions"

// Weights of the committee activity index.
const (
	MembershipWeight = 1.0
	StatementWeight  = 0.1
)

// Store is the subset of the graph store the scorecard reads.
type Store interface {
	GetLegislator(ctx context.Context, id string) (domain.Legislator, error)
	Sponsorship(ctx context.Context, id string) (graph.Sponsorship, error)
	VotesCast(ctx context.Context, id string) (int64, error)
	TotalVotes(ctx context.Context) (int64, error)
	Petitions(ctx context.Context, id string) (graph.PetitionTotals, error)
	Expenses(ctx context.Context, id string, fiscalYear int) (float64, error)
	LobbyistMeetings(ctx context.Context, id string) (int64, error)
	Interjections(ctx context.Context, id, marker string) (int64, error)
	VoteAlignments(ctx context.Context, id string) ([]graph.VoteAlignment, error)
	CommitteeMemberships(ctx context.Context, id string) (int64, error)
	CommitteeStatements(ctx context.Context, id string) (int64, error)
}

// Scorecard is the published accountability record of one legislator.
// Rates are percentages in [0, 100].
type Scorecard struct {
	Legislator domain.Legislator `json:"legislator"`

	BillsSponsored              int64   `json:"bills_sponsored"`
	BillsPassed                 int64   `json:"bills_passed"`
	VotesParticipated           int64   `json:"votes_participated"`
	PetitionsSponsored          int64   `json:"petitions_sponsored"`
	TotalPetitionSignatures     int64   `json:"total_petition_signatures"`
	CurrentYearExpenses         float64 `json:"current_year_expenses"`
	LobbyistMeetings            int64   `json:"lobbyist_meetings"`
	QuestionPeriodInterjections int64   `json:"question_period_interjections"`

	VotingParticipationRate float64 `json:"voting_participation_rate"`
	PartyDisciplineScore    float64 `json:"party_discipline_score"`
	LegislativeSuccessRate  float64 `json:"legislative_success_rate"`
	CommitteeActivityIndex  float64 `json:"committee_activity_index"`

	EvaluatedFiscalYear int `json:"evaluated_fiscal_year"`
}

// Partial holds the raw traversal results before rates are derived. Each
// field is written by exactly one traversal.
type Partial struct {
	Legislator          domain.Legislator
	Sponsorship         graph.Sponsorship
	VotesCast           int64
	TotalVotes          int64
	Petitions           graph.PetitionTotals
	Expenses            float64
	LobbyistMeetings    int64
	Interjections       int64
	Alignments          []graph.VoteAlignment
	Memberships         int64
	CommitteeStatements int64
	FiscalYear          int
}

// Engine computes scorecards.
type Engine struct {
	store  Store
	marker string
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithMarker sets the question period heading marker.
func WithMarker(marker string) Option {
	return func(e *Engine) {
		if marker != "" {
			e.marker = marker
		}
	}
}

// WithClock sets the evaluation clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates a scorecard engine.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, marker: DefaultQuestionPeriodMarker, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Compute builds the scorecard for legislator id. The legislator lookup
// runs first so an unknown id fails without issuing the other traversals.
func (e *Engine) Compute(ctx context.Context, id string) (Scorecard, error) {
	leg, err := e.store.GetLegislator(ctx, id)
	if err != nil {
		return Scorecard{}, err
	}

	p := Partial{Legislator: leg, FiscalYear: domain.FiscalYear(e.now())}
	err = fn.FanOut(ctx,
		fn.Traced("scorecard.sponsorship", func(ctx context.Context) (err error) {
			p.Sponsorship, err = e.store.Sponsorship(ctx, id)
			return err
		}),
		fn.Traced("scorecard.votes_cast", func(ctx context.Context) (err error) {
			p.VotesCast, err = e.store.VotesCast(ctx, id)
			return err
		}),
		fn.Traced("scorecard.total_votes", func(ctx context.Context) (err error) {
			p.TotalVotes, err = e.store.TotalVotes(ctx)
			return err
		}),
		fn.Traced("scorecard.petitions", func(ctx context.Context) (err error) {
			p.Petitions, err = e.store.Petitions(ctx, id)
			return err
		}),
		fn.Traced("scorecard.expenses", func(ctx context.Context) (err error) {
			p.Expenses, err = e.store.Expenses(ctx, id, p.FiscalYear)
			return err
		}),
		fn.Traced("scorecard.lobbyists", func(ctx context.Context) (err error) {
			p.LobbyistMeetings, err = e.store.LobbyistMeetings(ctx, id)
			return err
		}),
		fn.Traced("scorecard.interjections", func(ctx context.Context) (err error) {
			p.Interjections, err = e.store.Interjections(ctx, id, e.marker)
			return err
		}),
		fn.Traced("scorecard.alignments", func(ctx context.Context) (err error) {
			p.Alignments, err = e.store.VoteAlignments(ctx, id)
			return err
		}),
		fn.Traced("scorecard.memberships", func(ctx context.Context) (err error) {
			p.Memberships, err = e.store.CommitteeMemberships(ctx, id)
			return err
		}),
		fn.Traced("scorecard.committee_statements", func(ctx context.Context) (err error) {
			p.CommitteeStatements, err = e.store.CommitteeStatements(ctx, id)
			return err
		}),
	)
	if err != nil {
		return Scorecard{}, err
	}
	return Finalize(p), nil
}

// Finalize derives the scorecard from raw traversal results.
func Finalize(p Partial) Scorecard {
	passed := min(p.Sponsorship.Passed, p.Sponsorship.Sponsored)
	return Scorecard{
		Legislator:                  p.Legislator,
		BillsSponsored:              p.Sponsorship.Sponsored,
		BillsPassed:                 passed,
		VotesParticipated:           p.VotesCast,
		PetitionsSponsored:          p.Petitions.Count,
		TotalPetitionSignatures:     p.Petitions.Signatures,
		CurrentYearExpenses:         p.Expenses,
		LobbyistMeetings:            p.LobbyistMeetings,
		QuestionPeriodInterjections: p.Interjections,
		VotingParticipationRate:     clampPercent(fn.Percent(float64(p.VotesCast), float64(p.TotalVotes))),
		PartyDisciplineScore:        DisciplineScore(p.Alignments),
		LegislativeSuccessRate:      fn.Percent(float64(passed), float64(p.Sponsorship.Sponsored)),
		CommitteeActivityIndex:      ActivityIndex(p.Memberships, p.CommitteeStatements),
		EvaluatedFiscalYear:         p.FiscalYear,
	}
}

// Aligned reports whether a vote counts as voting with the party: strictly
// more than half of the same-party colleagues who voted took the same
// position. A vote with no colleague voting is aligned.
func Aligned(a graph.VoteAlignment) bool {
	if a.Colleagues == 0 {
		return true
	}
	return 2*a.Agree > a.Colleagues
}

// DisciplineScore is the percentage of votes cast that were aligned.
func DisciplineScore(votes []graph.VoteAlignment) float64 {
	var aligned int
	for _, v := range votes {
		if Aligned(v) {
			aligned++
		}
	}
	return fn.Percent(float64(aligned), float64(len(votes)))
}

// ActivityIndex weights committee memberships and committee-evidence
// statements.
func ActivityIndex(memberships, statements int64) float64 {
	return float64(memberships)*MembershipWeight + float64(statements)*StatementWeight
}

func clampPercent(v float64) float64 {
	return max(0, min(100, v))
}
