// Package service is the query surface every transport calls. It validates
// requests, bounds them with a timeout, dispatches to the graph store and
// the metric engines, and records the outcome in logs, metrics and traces.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/parlgraph/parlgraph/engine/baseline"
	"github.com/parlgraph/parlgraph/engine/committee"
	"github.com/parlgraph/parlgraph/engine/conflict"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/parlgraph/parlgraph/engine/scorecard"
	"github.com/parlgraph/parlgraph/engine/semantic"
	"github.com/parlgraph/parlgraph/engine/spending"
	"github.com/parlgraph/parlgraph/pkg/fn"
	"github.com/parlgraph/parlgraph/pkg/metrics"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 15 * time.Second

// Store is everything the service and its engines read from the graph.
type Store interface {
	scorecard.Store
	conflict.Store
	spending.Store
	committee.Store
	baseline.Store

	SearchLegislators(ctx context.Context, f domain.LegislatorFilter) ([]domain.Legislator, error)
	CountLegislators(ctx context.Context, f domain.LegislatorFilter) (int64, error)
	SearchBills(ctx context.Context, f domain.BillFilter) ([]domain.Bill, error)
	CountBills(ctx context.Context, f domain.BillFilter) (int64, error)
	SearchStatements(ctx context.Context, f domain.StatementFilter) ([]graph.StatementHit, error)
	CountStatements(ctx context.Context, f domain.StatementFilter) (int64, error)
	StatementThread(ctx context.Context, threadID string) (graph.Thread, error)
	BillLobbyingActivity(ctx context.Context, number, session string) (graph.LobbyingActivity, error)
	ListParties(ctx context.Context) ([]domain.Party, error)
	ListCommittees(ctx context.Context) ([]domain.Committee, error)
	Stats(ctx context.Context) (graph.Stats, error)
	Ping(ctx context.Context) error
}

// StatementIndex is a vector index of statement embeddings.
type StatementIndex interface {
	Search(ctx context.Context, q semantic.Query) ([]semantic.Hit, error)
}

// Embedder turns query text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Observer records operation outcomes. *metrics.Registry implements it.
type Observer interface {
	Observe(op, outcome string, d time.Duration)
}

// Service is the engine facade.
type Service struct {
	store      Store
	scorecards *scorecard.Engine
	conflicts  *conflict.Detector
	spending   *spending.Aggregator
	committees *committee.Scorer
	baselines  *baseline.Calculator

	index    StatementIndex
	embedder Embedder

	timeout time.Duration
	obs     Observer
	log     *slog.Logger
}

// Options configures a Service. Zero values use defaults.
type Options struct {
	QuestionPeriodMarker string
	Workers              int
	Timeout              time.Duration
	Now                  func() time.Time
	Observer             Observer
	Logger               *slog.Logger
	// Index and Embedder enable semantic statement search; both or neither.
	Index    StatementIndex
	Embedder Embedder
}

// New wires the engines over store.
func New(store Store, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	scorer := scorecard.New(store,
		scorecard.WithMarker(opts.QuestionPeriodMarker),
		scorecard.WithClock(opts.Now),
	)
	s := &Service{
		store:      store,
		scorecards: scorer,
		conflicts:  conflict.New(store),
		spending:   spending.New(store),
		committees: committee.New(store, committee.WithClock(opts.Now)),
		baselines:  baseline.New(store, scorer, opts.Workers),
		timeout:    opts.Timeout,
		obs:        opts.Observer,
		log:        opts.Logger,
	}
	if opts.Index != nil && opts.Embedder != nil {
		s.index, s.embedder = opts.Index, opts.Embedder
	}
	return s
}

type nopObserver struct{}

func (nopObserver) Observe(string, string, time.Duration) {}

// Outcome classifies err into the transport-facing error codes.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrInvalidFilter):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case domain.IsRetryable(err), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeInternal
	}
}

// call validates, applies the timeout, traces, and records the outcome.
func call[T any](ctx context.Context, s *Service, op string, validate func() error, f func(context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		out T
		err error
	)
	if validate != nil {
		err = validate()
	}
	if err == nil {
		out, err = fn.Span(ctx, "service."+op, f)
	}

	outcome := Outcome(err)
	elapsed := time.Since(start)
	s.obs.Observe(op, outcome, elapsed)

	log := s.log
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		log = log.With("trace_id", sc.TraceID().String())
	}
	switch outcome {
	case metrics.OutcomeOK:
		log.Debug("query", "op", op, "duration", elapsed)
	case metrics.OutcomeInvalid, metrics.OutcomeNotFound:
		log.Info("query rejected", "op", op, "outcome", outcome, "err", err)
	case metrics.OutcomeUnavailable:
		log.Warn("graph store unavailable", "op", op, "duration", elapsed, "err", err)
	default:
		log.Error("query failed", "op", op, "duration", elapsed, "err", err)
	}
	if err != nil {
		return zero, err
	}
	return out, nil
}

// Health reports whether the graph store is reachable.
func (s *Service) Health(ctx context.Context) error {
	_, err := call(ctx, s, "health", nil, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.Ping(ctx)
	})
	return err
}
