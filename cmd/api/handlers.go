package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/parlgraph/parlgraph/engine/baseline"
	"github.com/parlgraph/parlgraph/engine/committee"
	"github.com/parlgraph/parlgraph/engine/conflict"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/parlgraph/parlgraph/engine/scorecard"
	"github.com/parlgraph/parlgraph/engine/service"
	"github.com/parlgraph/parlgraph/engine/spending"
	"github.com/parlgraph/parlgraph/pkg/metrics"
)

// queries is the service surface the HTTP handlers call.
type queries interface {
	Health(ctx context.Context) error
	Scorecard(ctx context.Context, id string) (scorecard.Scorecard, error)
	SearchLegislators(ctx context.Context, f domain.LegislatorFilter) (service.Page[domain.Legislator], error)
	SearchBills(ctx context.Context, f domain.BillFilter) (service.Page[domain.Bill], error)
	SearchStatements(ctx context.Context, f domain.StatementFilter) (service.Page[graph.StatementHit], error)
	StatementThread(ctx context.Context, threadID string) (graph.Thread, error)
	BillLobbying(ctx context.Context, number, session string) (graph.LobbyingActivity, error)
	Conflicts(ctx context.Context, limit int) (conflict.Report, error)
	SpendingTrends(ctx context.Context, fiscalYear *int) (spending.Trends, error)
	CommitteeActivity(ctx context.Context, code string) (committee.Activity, error)
	PartyBaseline(ctx context.Context, code string) (baseline.Baseline, error)
	ListParties(ctx context.Context) ([]domain.Party, error)
	ListCommittees(ctx context.Context) ([]domain.Committee, error)
	Stats(ctx context.Context) (graph.Stats, error)
}

func routes(mux *http.ServeMux, q queries, logger *slog.Logger) {
	h := &handlers{q: q, log: logger}
	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("GET /api/legislators", h.searchLegislators)
	mux.HandleFunc("GET /api/legislators/{id}/scorecard", h.scorecard)
	mux.HandleFunc("GET /api/bills", h.searchBills)
	mux.HandleFunc("GET /api/bills/{session}/{number}/lobbying", h.billLobbying)
	mux.HandleFunc("GET /api/statements", h.searchStatements)
	mux.HandleFunc("GET /api/statements/threads/{id}", h.statementThread)
	mux.HandleFunc("GET /api/conflicts", h.conflicts)
	mux.HandleFunc("GET /api/spending/trends", h.spendingTrends)
	mux.HandleFunc("GET /api/parties", h.listParties)
	mux.HandleFunc("GET /api/parties/{code}/baseline", h.partyBaseline)
	mux.HandleFunc("GET /api/committees", h.listCommittees)
	mux.HandleFunc("GET /api/committees/{code}/activity", h.committeeActivity)
	mux.HandleFunc("GET /api/stats", h.stats)
}

type handlers struct {
	q   queries
	log *slog.Logger
}

// --- Handlers ---

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	if err := h.q.Health(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) scorecard(w http.ResponseWriter, r *http.Request) {
	card, err := h.q.Scorecard(r.Context(), r.PathValue("id"))
	h.respond(w, r, card, err)
}

func (h *handlers) searchLegislators(w http.ResponseWriter, r *http.Request) {
	p := params{v: r.URL.Query()}
	f := domain.LegislatorFilter{
		Text:        p.str("q"),
		Party:       p.str("party"),
		CurrentOnly: p.boolean("current"),
		CabinetOnly: p.boolean("cabinet"),
		Page:        p.page(),
	}
	if p.err != nil {
		h.fail(w, r, p.err)
		return
	}
	page, err := h.q.SearchLegislators(r.Context(), f)
	h.respond(w, r, page, err)
}

func (h *handlers) searchBills(w http.ResponseWriter, r *http.Request) {
	p := params{v: r.URL.Query()}
	f := domain.BillFilter{
		Text:    p.str("q"),
		Status:  p.str("status"),
		Session: p.str("session"),
		Type:    p.str("type"),
		Chamber: p.str("chamber"),
		Introduced: domain.DateRange{
			From: p.date("from"),
			To:   p.date("to"),
		},
		Page: p.page(),
	}
	if p.err != nil {
		h.fail(w, r, p.err)
		return
	}
	page, err := h.q.SearchBills(r.Context(), f)
	h.respond(w, r, page, err)
}

func (h *handlers) searchStatements(w http.ResponseWriter, r *http.Request) {
	p := params{v: r.URL.Query()}
	f := domain.StatementFilter{
		Text: p.str("q"),
		Mode: p.str("mode"),
		Date: domain.DateRange{
			From: p.date("from"),
			To:   p.date("to"),
		},
		Page: p.page(),
	}
	if p.err != nil {
		h.fail(w, r, p.err)
		return
	}
	page, err := h.q.SearchStatements(r.Context(), f)
	h.respond(w, r, page, err)
}

func (h *handlers) statementThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.q.StatementThread(r.Context(), r.PathValue("id"))
	h.respond(w, r, thread, err)
}

func (h *handlers) billLobbying(w http.ResponseWriter, r *http.Request) {
	activity, err := h.q.BillLobbying(r.Context(), r.PathValue("number"), r.PathValue("session"))
	h.respond(w, r, activity, err)
}

func (h *handlers) conflicts(w http.ResponseWriter, r *http.Request) {
	p := params{v: r.URL.Query()}
	limit := p.integer("limit", domain.ErrInvalidLimit)
	if p.err != nil {
		h.fail(w, r, p.err)
		return
	}
	report, err := h.q.Conflicts(r.Context(), limit)
	h.respond(w, r, report, err)
}

func (h *handlers) spendingTrends(w http.ResponseWriter, r *http.Request) {
	p := params{v: r.URL.Query()}
	var year *int
	if p.str("fiscal_year") != "" {
		y := p.integer("fiscal_year", domain.ErrInvalidYear)
		year = &y
	}
	if p.err != nil {
		h.fail(w, r, p.err)
		return
	}
	trends, err := h.q.SpendingTrends(r.Context(), year)
	h.respond(w, r, trends, err)
}

func (h *handlers) committeeActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.q.CommitteeActivity(r.Context(), r.PathValue("code"))
	h.respond(w, r, activity, err)
}

func (h *handlers) partyBaseline(w http.ResponseWriter, r *http.Request) {
	b, err := h.q.PartyBaseline(r.Context(), r.PathValue("code"))
	h.respond(w, r, b, err)
}

func (h *handlers) listParties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.q.ListParties(r.Context())
	h.respond(w, r, parties, err)
}

func (h *handlers) listCommittees(w http.ResponseWriter, r *http.Request) {
	committees, err := h.q.ListCommittees(r.Context())
	h.respond(w, r, committees, err)
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.q.Stats(r.Context())
	h.respond(w, r, stats, err)
}

// --- Responses ---

func (h *handlers) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	body := service.ErrorFor(err)
	status := statusFor(body.Code)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, struct {
		Error *service.ErrorBody `json:"error"`
	}{body})
}

func statusFor(code string) int {
	switch code {
	case metrics.OutcomeInvalid:
		return http.StatusBadRequest
	case metrics.OutcomeNotFound:
		return http.StatusNotFound
	case metrics.OutcomeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// --- Query parameters ---

// params reads query parameters, keeping the first parse failure.
type params struct {
	v   url.Values
	err error
}

func (p *params) str(key string) string { return strings.TrimSpace(p.v.Get(key)) }

func (p *params) integer(key string, sentinel error) int {
	s := p.str(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = domain.NewValidationError(key, s, sentinel)
	}
	return n
}

func (p *params) boolean(key string) bool {
	s := p.str(key)
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil && p.err == nil {
		p.err = domain.NewValidationError(key, s, domain.ErrInvalidFilter)
	}
	return b
}

func (p *params) date(key string) time.Time {
	s := p.str(key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil && p.err == nil {
		p.err = domain.NewValidationError(key, s, domain.ErrInvalidDateRange)
	}
	return t
}

func (p *params) page() domain.Page {
	return domain.Page{
		Limit:  p.integer("limit", domain.ErrInvalidLimit),
		Offset: p.integer("offset", domain.ErrInvalidOffset),
	}
}
