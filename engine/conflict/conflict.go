// Package conflict flags legislators who voted for bills lobbied on by
// organizations that donated to their party and hold government contracts.
package conflict

import (
	"context"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/graph"
)

// Disclaimer accompanies every report.
const Disclaimer = "A conflict-of-interest flag is a statistical heuristic derived from public " +
	"lobbying, donation, voting and contract records. It is not evidence or proof of impropriety."

// Store is the subset of the graph store the detector reads.
type Store interface {
	Conflicts(ctx context.Context, limit int) ([]graph.ConflictRow, error)
}

// Report is a ranked list of flagged triples.
type Report struct {
	Conflicts  []graph.ConflictRow `json:"conflicts"`
	Disclaimer string              `json:"disclaimer"`
}

// Detector ranks potential conflicts of interest.
type Detector struct {
	store Store
}

// New creates a Detector.
func New(store Store) *Detector {
	return &Detector{store: store}
}

// Detect returns at most limit triples ordered by suspicion score. Limit 0
// means the default; larger than the maximum is clamped.
func (d *Detector) Detect(ctx context.Context, limit int) (Report, error) {
	page := domain.Page{Limit: limit}
	if err := domain.ValidatePage(page); err != nil {
		return Report{}, err
	}
	rows, err := d.store.Conflicts(ctx, page.Normalize().Limit)
	if err != nil {
		return Report{}, err
	}
	if rows == nil {
		rows = []graph.ConflictRow{}
	}
	return Report{Conflicts: rows, Disclaimer: Disclaimer}, nil
}
