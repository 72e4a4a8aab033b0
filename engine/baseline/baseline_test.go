package baseline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/scorecard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	parties map[string]domain.Party
	members map[string][]string
}

func (f *fakeStore) GetParty(_ context.Context, code string) (domain.Party, error) {
	p, ok := f.parties[code]
	if !ok {
		return domain.Party{}, domain.NotFound("party", code)
	}
	return p, nil
}

func (f *fakeStore) CurrentMembers(_ context.Context, code string) ([]string, error) {
	return f.members[code], nil
}

type fakeScorer struct {
	mu     sync.Mutex
	cards  map[string]scorecard.Scorecard
	fail   string
	called []string
}

func (f *fakeScorer) Compute(_ context.Context, id string) (scorecard.Scorecard, error) {
	f.mu.Lock()
	f.called = append(f.called, id)
	f.mu.Unlock()
	if id == f.fail {
		return scorecard.Scorecard{}, errors.New("member failed")
	}
	return f.cards[id], nil
}

func TestAverage(t *testing.T) {
	cards := []scorecard.Scorecard{
		{VotingParticipationRate: 80, PartyDisciplineScore: 100, LegislativeSuccessRate: 50, CommitteeActivityIndex: 2, BillsSponsored: 4, BillsPassed: 2, CurrentYearExpenses: 1000},
		{VotingParticipationRate: 60, PartyDisciplineScore: 90, LegislativeSuccessRate: 0, CommitteeActivityIndex: 1, BillsSponsored: 0, BillsPassed: 0, CurrentYearExpenses: 3000},
	}
	want := Baseline{
		MemberCount:             2,
		VotingParticipationRate: 70,
		PartyDisciplineScore:    95,
		LegislativeSuccessRate:  25,
		CommitteeActivityIndex:  1.5,
		BillsSponsored:          2,
		BillsPassed:             1,
		CurrentYearExpenses:     2000,
	}
	if diff := cmp.Diff(want, Average(cards)); diff != "" {
		t.Errorf("Average mismatch (-want +got):\n%s", diff)
	}
}

func TestAverage_NoMembers(t *testing.T) {
	assert.Equal(t, Baseline{}, Average(nil))
}

func TestBaseline(t *testing.T) {
	store := &fakeStore{
		parties: map[string]domain.Party{"LIB": {Code: "LIB", Name: "Liberal"}},
		members: map[string][]string{"LIB": {"a", "b", "c"}},
	}
	scorer := &fakeScorer{cards: map[string]scorecard.Scorecard{
		"a": {BillsSponsored: 3},
		"b": {BillsSponsored: 6},
		"c": {BillsSponsored: 0},
	}}
	b, err := New(store, scorer, 2).Baseline(context.Background(), "LIB")
	require.NoError(t, err)
	assert.Equal(t, "Liberal", b.Party.Name)
	assert.Equal(t, 3, b.MemberCount)
	assert.Equal(t, 3.0, b.BillsSponsored)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, scorer.called)
}

func TestBaseline_NoCurrentMembers(t *testing.T) {
	store := &fakeStore{parties: map[string]domain.Party{"GRN": {Code: "GRN"}}}
	b, err := New(store, &fakeScorer{}, 0).Baseline(context.Background(), "GRN")
	require.NoError(t, err)
	assert.Equal(t, 0, b.MemberCount)
	assert.Equal(t, 0.0, b.PartyDisciplineScore)
}

func TestBaseline_UnknownParty(t *testing.T) {
	_, err := New(&fakeStore{}, &fakeScorer{}, 0).Baseline(context.Background(), "XYZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBaseline_MemberFailureAbandons(t *testing.T) {
	store := &fakeStore{
		parties: map[string]domain.Party{"LIB": {Code: "LIB"}},
		members: map[string][]string{"LIB": {"a", "b"}},
	}
	b, err := New(store, &fakeScorer{fail: "b"}, 1).Baseline(context.Background(), "LIB")
	require.Error(t, err)
	assert.Equal(t, Baseline{}, b)
}
