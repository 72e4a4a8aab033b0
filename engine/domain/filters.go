package domain

import "time"

// Pagination defaults shared by every list operation.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is offset+limit pagination.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Normalize applies the default limit and clamps to MaxLimit. Call after
// validation; negative values are rejected there, not here.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// DateRange is an inclusive date window. Zero bounds are open.
type DateRange struct {
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
}

// LegislatorFilter selects legislators. Every field is optional.
type LegislatorFilter struct {
	Text        string `json:"text,omitempty"`
	Party       string `json:"party,omitempty"`
	CurrentOnly bool   `json:"current_only,omitempty"`
	CabinetOnly bool   `json:"cabinet_only,omitempty"`
	Page
}

// BillFilter selects bills. Every field is optional.
type BillFilter struct {
	Text       string    `json:"text,omitempty"`
	Status     string    `json:"status,omitempty"`
	Session    string    `json:"session,omitempty"`
	Type       string    `json:"type,omitempty"` // government | private
	Chamber    string    `json:"chamber,omitempty"`
	Introduced DateRange `json:"introduced,omitzero"`
	Page
}

// Statement search modes.
const (
	SearchFullText = "fulltext"
	SearchSemantic = "semantic"
)

// StatementFilter is a relevance-ranked statement search.
type StatementFilter struct {
	Text string    `json:"text"`
	Mode string    `json:"mode,omitempty"`
	Date DateRange `json:"date,omitzero"`
	Page
}

// MinRelevance is the score a search hit must exceed to be returned.
const MinRelevance = 0.5
