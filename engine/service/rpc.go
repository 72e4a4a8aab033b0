package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/pkg/metrics"
)

// Operation names. Message transports use them as subject suffixes.
const (
	OpScorecard         = "scorecard"
	OpSearchLegislators = "search_legislators"
	OpSearchBills       = "search_bills"
	OpSearchStatements  = "search_statements"
	OpStatementThread   = "statement_thread"
	OpBillLobbying      = "bill_lobbying"
	OpConflicts         = "conflicts"
	OpSpendingTrends    = "spending_trends"
	OpCommitteeActivity = "committee_activity"
	OpPartyBaseline     = "party_baseline"
	OpListParties       = "list_parties"
	OpListCommittees    = "list_committees"
	OpGraphStats        = "graph_stats"
)

// BreakerEvent is broadcast when the graph store circuit breaker changes
// state.
type BreakerEvent struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at"`
}

// BreakerSubject is the subject breaker events are published on.
func BreakerSubject(prefix string) string { return prefix + ".events.breaker" }

// ErrUnknownOperation is wrapped when Invoke is given an unregistered name.
var ErrUnknownOperation = errors.New("unknown operation")

// Request bodies for operations keyed by a single root entity.
type (
	IDRequest struct {
		ID string `json:"id"`
	}
	CodeRequest struct {
		Code string `json:"code"`
	}
	BillRequest struct {
		Number  string `json:"number"`
		Session string `json:"session"`
	}
	LimitRequest struct {
		Limit int `json:"limit,omitempty"`
	}
	FiscalYearRequest struct {
		FiscalYear *int `json:"fiscal_year,omitempty"`
	}
)

// ErrorBody is the wire form of an error.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e *ErrorBody) Error() string { return e.Code + ": " + e.Message }

// ErrorFor converts err to its wire form. Internal errors are not echoed.
func ErrorFor(err error) *ErrorBody {
	code := Outcome(err)
	msg := err.Error()
	if code == metrics.OutcomeInternal {
		msg = "internal error"
	}
	return &ErrorBody{Code: code, Message: msg, Retryable: code == metrics.OutcomeUnavailable}
}

// Envelope is the message-transport response: exactly one of Data or Error.
type Envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// RawEnvelope is Envelope as decoded by a client.
type RawEnvelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

// Respond wraps the result of an operation in an Envelope.
func Respond(v any, err error) Envelope {
	if err != nil {
		return Envelope{Error: ErrorFor(err)}
	}
	return Envelope{Data: v}
}

type handler func(ctx context.Context, s *Service, body json.RawMessage) (any, error)

func bind[Req, Resp any](f func(*Service, context.Context, Req) (Resp, error)) handler {
	return func(ctx context.Context, s *Service, body json.RawMessage) (any, error) {
		var req Req
		if len(body) > 0 && string(body) != "null" {
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, domain.NewValidationError("body", "", fmt.Errorf("decode request: %w", err))
			}
		}
		return f(s, ctx, req)
	}
}

func bindNone[Resp any](f func(*Service, context.Context) (Resp, error)) handler {
	return func(ctx context.Context, s *Service, _ json.RawMessage) (any, error) {
		return f(s, ctx)
	}
}

var operations = map[string]handler{
	OpScorecard: bind(func(s *Service, ctx context.Context, r IDRequest) (any, error) {
		return s.Scorecard(ctx, r.ID)
	}),
	OpSearchLegislators: bind((*Service).SearchLegislators),
	OpSearchBills:       bind((*Service).SearchBills),
	OpSearchStatements:  bind((*Service).SearchStatements),
	OpStatementThread: bind(func(s *Service, ctx context.Context, r IDRequest) (any, error) {
		return s.StatementThread(ctx, r.ID)
	}),
	OpBillLobbying: bind(func(s *Service, ctx context.Context, r BillRequest) (any, error) {
		return s.BillLobbying(ctx, r.Number, r.Session)
	}),
	OpConflicts: bind(func(s *Service, ctx context.Context, r LimitRequest) (any, error) {
		return s.Conflicts(ctx, r.Limit)
	}),
	OpSpendingTrends: bind(func(s *Service, ctx context.Context, r FiscalYearRequest) (any, error) {
		return s.SpendingTrends(ctx, r.FiscalYear)
	}),
	OpCommitteeActivity: bind(func(s *Service, ctx context.Context, r CodeRequest) (any, error) {
		return s.CommitteeActivity(ctx, r.Code)
	}),
	OpPartyBaseline: bind(func(s *Service, ctx context.Context, r CodeRequest) (any, error) {
		return s.PartyBaseline(ctx, r.Code)
	}),
	OpListParties:    bindNone((*Service).ListParties),
	OpListCommittees: bindNone((*Service).ListCommittees),
	OpGraphStats:     bindNone((*Service).Stats),
}

// Operations lists the names Invoke accepts, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Invoke runs the named operation with a JSON request body. An empty body
// is the zero request.
func (s *Service) Invoke(ctx context.Context, op string, body json.RawMessage) (any, error) {
	h, ok := operations[op]
	if !ok {
		return nil, domain.NewValidationError("operation", op, ErrUnknownOperation)
	}
	return h(ctx, s, body)
}
