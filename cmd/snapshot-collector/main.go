// Command snapshot-collector fetches graph statistics from the API, computes
// per-label growth since the previous run, and writes JSON files for a
// static dashboard.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/parlgraph/parlgraph/engine/graph"
)

// Snapshot is one collected graphStats result.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	graph.Stats
}

// Delta is the change between two consecutive snapshots.
type Delta struct {
	Timestamp        time.Time        `json:"timestamp"`
	Period           string           `json:"period"`
	NewNodes         int64            `json:"new_nodes"`
	NewRelationships int64            `json:"new_relationships"`
	NodesByLabel     map[string]int64 `json:"nodes_by_label"`
	RelsByType       map[string]int64 `json:"relationships_by_type"`
}

const maxHistory = 288

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "API base URL")
	docsDir := flag.String("docs-dir", "docs", "docs directory for output")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(*apiURL, filepath.Join(*docsDir, "data"), *timeout, time.Now().UTC(), logger); err != nil {
		logger.Error("snapshot failed", "err", err)
		os.Exit(1)
	}
}

func run(apiURL, dataDir string, timeout time.Duration, now time.Time, logger *slog.Logger) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	latestPath := filepath.Join(dataDir, "stats-latest.json")
	historyPath := filepath.Join(dataDir, "stats-history.json")
	prevPath := filepath.Join(dataDir, ".stats-prev.json")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	stats, err := fetchStats(ctx, http.DefaultClient, apiURL)
	if err != nil {
		return err
	}
	current := Snapshot{Timestamp: now, Stats: stats}

	var prev Snapshot
	if err := readJSON(prevPath, &prev); err != nil {
		return err
	}
	delta := diff(prev, current)

	var history []Delta
	if err := readJSON(historyPath, &history); err != nil {
		return err
	}
	history = append(history, delta)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	for path, v := range map[string]any{latestPath: current, prevPath: current, historyPath: history} {
		if err := writeJSON(path, v); err != nil {
			return err
		}
	}

	logger.Info("snapshot collected",
		"nodes", sum(current.Nodes),
		"relationships", sum(current.Relationships),
		"new_nodes", delta.NewNodes,
		"new_relationships", delta.NewRelationships)
	return nil
}

func fetchStats(ctx context.Context, client *http.Client, apiURL string) (graph.Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/stats", nil)
	if err != nil {
		return graph.Stats{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return graph.Stats{}, fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return graph.Stats{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return graph.Stats{}, fmt.Errorf("API returned %d: %s", resp.StatusCode, body)
	}
	var stats graph.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return graph.Stats{}, fmt.Errorf("parse stats: %w", err)
	}
	return stats, nil
}

// diff computes cur - prev. A zero prev (first run) yields the full counts.
func diff(prev, cur Snapshot) Delta {
	d := Delta{
		Timestamp:        cur.Timestamp,
		NewNodes:         sum(cur.Nodes) - sum(prev.Nodes),
		NewRelationships: sum(cur.Relationships) - sum(prev.Relationships),
		NodesByLabel:     subtract(prev.Nodes, cur.Nodes),
		RelsByType:       subtract(prev.Relationships, cur.Relationships),
	}
	if !prev.Timestamp.IsZero() {
		d.Period = cur.Timestamp.Sub(prev.Timestamp).Round(time.Second).String()
	}
	return d
}

// subtract reports every key whose count changed, including removed keys.
func subtract(prev, cur map[string]int64) map[string]int64 {
	out := make(map[string]int64)
	for k, v := range cur {
		if dv := v - prev[k]; dv != 0 {
			out[k] = dv
		}
	}
	for k, v := range prev {
		if _, ok := cur[k]; !ok {
			out[k] = -v
		}
	}
	return out
}

func sum(m map[string]int64) int64 {
	var n int64
	for _, v := range m {
		n += v
	}
	return n
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
