// Package committee scores committee activity from meetings, evidence and
// referred bills.
package committee

import (
	"context"
	"time"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/parlgraph/parlgraph/engine/scorecard"
	"github.com/parlgraph/parlgraph/pkg/fn"
)

// Store is the subset of the graph store the scorer reads.
type Store interface {
	GetCommittee(ctx context.Context, code string) (domain.Committee, error)
	CommitteeMeetings(ctx context.Context, code string) ([]graph.MeetingActivity, error)
	CommitteeRoster(ctx context.Context, code string) (graph.CommitteeRoster, error)
}

// Activity is the activity record of one committee.
type Activity struct {
	Committee               domain.Committee `json:"committee"`
	TotalMeetings           int64            `json:"total_meetings"`
	MeetingsLast30Days      int64            `json:"meetings_last_30_days"`
	MeetingsLast90Days      int64            `json:"meetings_last_90_days"`
	EvidenceDocuments       int64            `json:"evidence_documents"`
	EvidenceStatements      int64            `json:"evidence_statements"`
	ActiveBills             int64            `json:"active_bills"`
	MemberCount             int64            `json:"member_count"`
	AvgStatementsPerMeeting float64          `json:"avg_statements_per_meeting"`
	ActivityIndex           float64          `json:"activity_index"`
}

// Scorer computes committee activity.
type Scorer struct {
	store Store
	now   func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock sets the evaluation clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// New creates a Scorer.
func New(store Store, opts ...Option) *Scorer {
	s := &Scorer{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Activity computes the activity record for committee code.
func (s *Scorer) Activity(ctx context.Context, code string) (Activity, error) {
	c, err := s.store.GetCommittee(ctx, code)
	if err != nil {
		return Activity{}, err
	}
	var (
		meetings []graph.MeetingActivity
		roster   graph.CommitteeRoster
	)
	err = fn.FanOut(ctx,
		fn.Traced("committee.meetings", func(ctx context.Context) (err error) {
			meetings, err = s.store.CommitteeMeetings(ctx, code)
			return err
		}),
		fn.Traced("committee.roster", func(ctx context.Context) (err error) {
			roster, err = s.store.CommitteeRoster(ctx, code)
			return err
		}),
	)
	if err != nil {
		return Activity{}, err
	}
	a := Summarize(meetings, roster, s.now())
	a.Committee = c
	return a, nil
}

// Summarize derives the activity record. Recent-meeting windows count whole
// UTC calendar days: [today-N, today]. Meetings dated after today are not
// recent.
func Summarize(meetings []graph.MeetingActivity, roster graph.CommitteeRoster, now time.Time) Activity {
	a := Activity{
		TotalMeetings: int64(len(meetings)),
		ActiveBills:   roster.ActiveBills,
		MemberCount:   roster.Members,
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	since30 := today.AddDate(0, 0, -30)
	since90 := today.AddDate(0, 0, -90)

	var withStatements int64
	for _, m := range meetings {
		a.EvidenceDocuments += m.Documents
		a.EvidenceStatements += m.Statements
		if m.Statements > 0 {
			withStatements++
		}
		if m.Date.IsZero() || !m.Date.Before(tomorrow) {
			continue
		}
		if !m.Date.Before(since30) {
			a.MeetingsLast30Days++
		}
		if !m.Date.Before(since90) {
			a.MeetingsLast90Days++
		}
	}
	a.AvgStatementsPerMeeting = fn.Ratio(float64(a.EvidenceStatements), float64(withStatements))
	a.ActivityIndex = scorecard.ActivityIndex(roster.Members, a.EvidenceStatements)
	return a
}
