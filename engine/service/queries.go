package service

import (
	"context"
	"strings"

	"github.com/parlgraph/parlgraph/engine/baseline"
	"github.com/parlgraph/parlgraph/engine/committee"
	"github.com/parlgraph/parlgraph/engine/conflict"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/parlgraph/parlgraph/engine/scorecard"
	"github.com/parlgraph/parlgraph/engine/semantic"
	"github.com/parlgraph/parlgraph/engine/spending"
	"github.com/parlgraph/parlgraph/pkg/fn"
)

// Page is one page of a list operation and the total under its filters.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// ErrSemanticDisabled is wrapped when semantic search is requested but no
// vector index is configured.
var ErrSemanticDisabled = domain.NewValidationError("mode", domain.SearchSemantic, domain.ErrInvalidMode)

// page runs a search and its count concurrently.
func page[T any](ctx context.Context, p domain.Page, search func(context.Context) ([]T, error), count func(context.Context) (int64, error)) (Page[T], error) {
	p = p.Normalize()
	out := Page[T]{Offset: p.Offset, Limit: p.Limit}
	err := fn.FanOut(ctx,
		fn.Traced("search", func(ctx context.Context) (err error) {
			out.Items, err = search(ctx)
			return err
		}),
		fn.Traced("count", func(ctx context.Context) (err error) {
			out.Total, err = count(ctx)
			return err
		}),
	)
	if err != nil {
		return Page[T]{}, err
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out, nil
}

// Scorecard computes a legislator's scorecard.
func (s *Service) Scorecard(ctx context.Context, id string) (scorecard.Scorecard, error) {
	id = strings.TrimSpace(id)
	return call(ctx, s, "scorecard",
		func() error { return domain.ValidateKey("id", id) },
		func(ctx context.Context) (scorecard.Scorecard, error) { return s.scorecards.Compute(ctx, id) })
}

// SearchLegislators lists legislators matching f.
func (s *Service) SearchLegislators(ctx context.Context, f domain.LegislatorFilter) (Page[domain.Legislator], error) {
	return call(ctx, s, "search_legislators",
		func() error { return domain.ValidateLegislatorFilter(f) },
		func(ctx context.Context) (Page[domain.Legislator], error) {
			return page(ctx, f.Page,
				func(ctx context.Context) ([]domain.Legislator, error) { return s.store.SearchLegislators(ctx, f) },
				func(ctx context.Context) (int64, error) { return s.store.CountLegislators(ctx, f) })
		})
}

// SearchBills lists bills matching f.
func (s *Service) SearchBills(ctx context.Context, f domain.BillFilter) (Page[domain.Bill], error) {
	return call(ctx, s, "search_bills",
		func() error { return domain.ValidateBillFilter(f) },
		func(ctx context.Context) (Page[domain.Bill], error) {
			return page(ctx, f.Page,
				func(ctx context.Context) ([]domain.Bill, error) { return s.store.SearchBills(ctx, f) },
				func(ctx context.Context) (int64, error) { return s.store.CountBills(ctx, f) })
		})
}

// SearchStatements runs a relevance-ranked statement search, full-text by
// default or semantic when requested and configured. The semantic total is
// a lower bound: hits on this page plus the offset.
func (s *Service) SearchStatements(ctx context.Context, f domain.StatementFilter) (Page[graph.StatementHit], error) {
	validate := func() error {
		if err := domain.ValidateStatementFilter(f); err != nil {
			return err
		}
		if f.Mode == domain.SearchSemantic && s.index == nil {
			return ErrSemanticDisabled
		}
		return nil
	}
	return call(ctx, s, "search_statements", validate, func(ctx context.Context) (Page[graph.StatementHit], error) {
		if f.Mode == domain.SearchSemantic {
			return s.semanticStatements(ctx, f)
		}
		return page(ctx, f.Page,
			func(ctx context.Context) ([]graph.StatementHit, error) { return s.store.SearchStatements(ctx, f) },
			func(ctx context.Context) (int64, error) { return s.store.CountStatements(ctx, f) })
	})
}

func (s *Service) semanticStatements(ctx context.Context, f domain.StatementFilter) (Page[graph.StatementHit], error) {
	p := f.Page.Normalize()
	vec, err := s.embedder.Embed(ctx, strings.TrimSpace(f.Text))
	if err != nil {
		return Page[graph.StatementHit]{}, &domain.StoreError{Op: "embed query", Err: err}
	}
	hits, err := s.index.Search(ctx, semantic.Query{
		Embedding: vec,
		Offset:    p.Offset,
		Limit:     p.Limit,
		From:      f.Date.From,
		To:        f.Date.To,
	})
	if err != nil {
		return Page[graph.StatementHit]{}, &domain.StoreError{Op: "semantic search", Err: err}
	}
	items := fn.Map(hits, func(h semantic.Hit) graph.StatementHit {
		return graph.StatementHit{
			Statement: domain.Statement{
				ID:           h.StatementID,
				Heading:      h.Heading,
				Content:      h.Content,
				Date:         h.Date,
				ThreadID:     h.ThreadID,
				LegislatorID: h.LegislatorID,
			},
			Score: float64(h.Score),
		}
	})
	return Page[graph.StatementHit]{
		Items:  items,
		Total:  int64(p.Offset + len(items)),
		Offset: p.Offset,
		Limit:  p.Limit,
	}, nil
}

// StatementThread reassembles a reply thread.
func (s *Service) StatementThread(ctx context.Context, threadID string) (graph.Thread, error) {
	threadID = strings.TrimSpace(threadID)
	return call(ctx, s, "statement_thread",
		func() error { return domain.ValidateKey("thread_id", threadID) },
		func(ctx context.Context) (graph.Thread, error) { return s.store.StatementThread(ctx, threadID) })
}

// BillLobbying summarizes lobbying on a bill.
func (s *Service) BillLobbying(ctx context.Context, number, session string) (graph.LobbyingActivity, error) {
	number, session = strings.TrimSpace(number), strings.TrimSpace(session)
	validate := func() error {
		if err := domain.ValidateKey("number", number); err != nil {
			return err
		}
		return domain.ValidateKey("session", session)
	}
	return call(ctx, s, "bill_lobbying", validate, func(ctx context.Context) (graph.LobbyingActivity, error) {
		return s.store.BillLobbyingActivity(ctx, number, session)
	})
}

// Conflicts ranks potential conflicts of interest.
func (s *Service) Conflicts(ctx context.Context, limit int) (conflict.Report, error) {
	return call(ctx, s, "conflicts", nil, func(ctx context.Context) (conflict.Report, error) {
		return s.conflicts.Detect(ctx, limit)
	})
}

// SpendingTrends aggregates party spending per quarter.
func (s *Service) SpendingTrends(ctx context.Context, fiscalYear *int) (spending.Trends, error) {
	return call(ctx, s, "spending_trends",
		func() error { return domain.ValidateFiscalYear(fiscalYear) },
		func(ctx context.Context) (spending.Trends, error) { return s.spending.Trends(ctx, fiscalYear) })
}

// CommitteeActivity scores a committee.
func (s *Service) CommitteeActivity(ctx context.Context, code string) (committee.Activity, error) {
	code = strings.TrimSpace(code)
	return call(ctx, s, "committee_activity",
		func() error { return domain.ValidateKey("code", code) },
		func(ctx context.Context) (committee.Activity, error) { return s.committees.Activity(ctx, code) })
}

// PartyBaseline averages a party's current members.
func (s *Service) PartyBaseline(ctx context.Context, code string) (baseline.Baseline, error) {
	code = strings.TrimSpace(code)
	return call(ctx, s, "party_baseline",
		func() error { return domain.ValidateKey("code", code) },
		func(ctx context.Context) (baseline.Baseline, error) { return s.baselines.Baseline(ctx, code) })
}

// ListParties lists every party.
func (s *Service) ListParties(ctx context.Context) ([]domain.Party, error) {
	return call(ctx, s, "list_parties", nil, s.store.ListParties)
}

// ListCommittees lists every committee.
func (s *Service) ListCommittees(ctx context.Context) ([]domain.Committee, error) {
	return call(ctx, s, "list_committees", nil, s.store.ListCommittees)
}

// Stats counts graph nodes and relationships.
func (s *Service) Stats(ctx context.Context) (graph.Stats, error) {
	return call(ctx, s, "graph_stats", nil, s.store.Stats)
}
