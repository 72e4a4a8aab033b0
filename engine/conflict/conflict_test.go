package conflict

import (
	"context"
	"testing"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	rows      []graph.ConflictRow
	lastLimit int
}

func (f *fakeStore) Conflicts(_ context.Context, limit int) ([]graph.ConflictRow, error) {
	f.lastLimit = limit
	return f.rows, nil
}

func TestDetect_LimitNormalization(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, domain.DefaultLimit},
		{5, 5},
		{1000, domain.MaxLimit},
	}
	for _, tt := range tests {
		store := &fakeStore{}
		_, err := New(store).Detect(context.Background(), tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, store.lastLimit)
	}
}

func TestDetect_NegativeLimit(t *testing.T) {
	_, err := New(&fakeStore{}).Detect(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestDetect_AlwaysCarriesDisclaimer(t *testing.T) {
	r, err := New(&fakeStore{}).Detect(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, Disclaimer, r.Disclaimer)
	assert.NotNil(t, r.Conflicts)
	assert.Empty(t, r.Conflicts)
}

func TestDetect_PassesRowsThrough(t *testing.T) {
	rows := []graph.ConflictRow{
		{LegislatorName: "Ada", OrganizationName: "Acme", BillNumber: "C-5", Score: 3},
		{LegislatorName: "Bea", OrganizationName: "Acme", BillNumber: "C-5", Score: 1},
	}
	r, err := New(&fakeStore{rows: rows}).Detect(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, rows, r.Conflicts)
}
