package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	prev := Snapshot{Timestamp: t0, Stats: graph.Stats{
		Nodes:         map[string]int64{"Bill": 10, "Vote": 4, "Petition": 2},
		Relationships: map[string]int64{"VOTED": 40},
	}}
	cur := Snapshot{Timestamp: t0.Add(5 * time.Minute), Stats: graph.Stats{
		Nodes:         map[string]int64{"Bill": 12, "Vote": 4, "Statement": 3},
		Relationships: map[string]int64{"VOTED": 45, "MADE": 3},
	}}

	want := Delta{
		Timestamp:        cur.Timestamp,
		Period:           "5m0s",
		NewNodes:         3,
		NewRelationships: 8,
		NodesByLabel:     map[string]int64{"Bill": 2, "Statement": 3, "Petition": -2},
		RelsByType:       map[string]int64{"VOTED": 5, "MADE": 3},
	}
	if d := cmp.Diff(want, diff(prev, cur)); d != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", d)
	}
}

func TestDiff_FirstRun(t *testing.T) {
	cur := Snapshot{Timestamp: time.Now(), Stats: graph.Stats{Nodes: map[string]int64{"Bill": 3}}}
	d := diff(Snapshot{}, cur)
	assert.Equal(t, int64(3), d.NewNodes)
	assert.Empty(t, d.Period)
}

func TestFetchStats_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":"unavailable"}}`))
	}))
	defer srv.Close()

	_, err := fetchStats(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRun_WritesFilesAndHistory(t *testing.T) {
	var bills atomic.Int64
	bills.Store(5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stats", r.URL.Path)
		json.NewEncoder(w).Encode(graph.Stats{
			Nodes:         map[string]int64{"Bill": bills.Load()},
			Relationships: map[string]int64{},
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, run(srv.URL, dir, time.Second, t0, logger))
	bills.Store(8)
	require.NoError(t, run(srv.URL, dir, time.Second, t0.Add(time.Hour), logger))

	var history []Delta
	data, err := os.ReadFile(filepath.Join(dir, "stats-history.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, int64(5), history[0].NewNodes)
	assert.Equal(t, int64(3), history[1].NewNodes)
	assert.Equal(t, "1h0m0s", history[1].Period)

	var latest Snapshot
	data, err = os.ReadFile(filepath.Join(dir, "stats-latest.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &latest))
	assert.Equal(t, int64(8), latest.Nodes["Bill"])
}
