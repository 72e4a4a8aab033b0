// Package domain defines the legislative graph vocabulary: entity types,
// relationship names, the fiscal calendar, query filters, the error taxonomy,
// and the validation gate every query passes before touching the store.
package domain

import (
	"maps"
	"strings"
	"time"
)

// Legislator is a member of the legislature.
type Legislator struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Party       string `json:"party,omitempty"` // party code
	Riding      string `json:"riding"`
	Province    string `json:"province,omitempty"`
	Current     bool   `json:"current"`
	CabinetRole string `json:"cabinet_role,omitempty"`
}

// Party is a registered political party.
type Party struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Seats int64  `json:"seats"`
}

// Bill is identified by its number within a parliamentary session.
type Bill struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	Session    string    `json:"session"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Stage      string    `json:"stage,omitempty"`
	Government bool      `json:"government"`
	Chamber    string    `json:"chamber,omitempty"`
	Sponsor    string    `json:"sponsor,omitempty"` // legislator id
	Introduced time.Time `json:"introduced"`
}

// Vote is a single recorded division.
type Vote struct {
	ID      string    `json:"id"`
	Number  int64     `json:"number"`
	Session string    `json:"session"`
	Date    time.Time `json:"date"`
	Result  string    `json:"result"`
	Yeas    int64     `json:"yeas"`
	Nays    int64     `json:"nays"`
	Paired  int64     `json:"paired"`
	Bill    string    `json:"bill,omitempty"` // subject bill id
}

// Ballot is one legislator's position in one vote. In the graph it is the
// VOTED relationship itself, with the position as a property.
type Ballot struct {
	LegislatorID string   `json:"legislator_id"`
	VoteID       string   `json:"vote_id"`
	Position     Position `json:"position"`
}

// Expense is a quarterly expense line owned by exactly one legislator.
type Expense struct {
	ID         string  `json:"id"`
	Amount     float64 `json:"amount"`
	FiscalYear int     `json:"fiscal_year"`
	Quarter    int     `json:"quarter"`
	Category   string  `json:"category"`
}

// Petition is a citizen petition presented by a legislator.
type Petition struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	Title      string `json:"title"`
	Signatures int64  `json:"signatures"`
}

// Organization lobbies on bills, donates to parties and receives contracts.
type Organization struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
}

// Lobbyist represents an organization and meets with legislators.
type Lobbyist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Firm string `json:"firm,omitempty"`
}

// Committee is a standing or special committee.
type Committee struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Chamber string `json:"chamber,omitempty"`
}

// CommitteeMember is the SERVES_ON relationship.
type CommitteeMember struct {
	LegislatorID string    `json:"legislator_id"`
	Role         string    `json:"role"`
	StartDate    time.Time `json:"start_date"`
}

// Statement is a parliamentary utterance. ThreadID, ParentID and Sequence
// reconstruct reply chains.
type Statement struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Heading      string    `json:"heading,omitempty"`
	Content      string    `json:"content"`
	Date         time.Time `json:"date"`
	ThreadID     string    `json:"thread_id,omitempty"`
	ParentID     string    `json:"parent_id,omitempty"`
	Sequence     int64     `json:"sequence"`
	LegislatorID string    `json:"legislator_id,omitempty"`
	DocumentID   string    `json:"document_id,omitempty"`
}

// Position is a ballot position.
type Position string

const (
	PositionYea    Position = "yea"
	PositionNay    Position = "nay"
	PositionPaired Position = "paired"
)

// positionSpellings maps lowercased ballot text to its position.
var positionSpellings = map[string]Position{
	"yea":    PositionYea,
	"aye":    PositionYea,
	"yes":    PositionYea,
	"nay":    PositionNay,
	"no":     PositionNay,
	"paired": PositionPaired,
}

// ParsePosition normalises recorded ballot text. ok is false for anything
// outside {yea, nay, paired} and their spellings.
func ParsePosition(s string) (Position, bool) {
	p, ok := positionSpellings[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// PositionSpellings returns every lowercased ballot text ParsePosition
// accepts, mapped to its position. Store queries normalise with the same
// table.
func PositionSpellings() map[string]Position {
	return maps.Clone(positionSpellings)
}

// Bill statuses the engines match on.
const (
	StatusPassed      = "Passed"
	StatusInCommittee = "In Committee"
	StatusReported    = "Reported"
)

// ActiveCommitteeStatuses are the statuses of bills still before a committee.
var ActiveCommitteeStatuses = []string{StatusInCommittee, StatusReported}

// Statement and document types.
const (
	StatementInterjection = "interjection"
	DocumentCommittee     = "committee"
	DocumentDebate        = "debate"
)

// Bill types accepted by BillFilter.Type.
const (
	BillTypeGovernment = "government"
	BillTypePrivate    = "private"
)

// Node labels.
const (
	LabelLegislator   = "Legislator"
	LabelParty        = "Party"
	LabelBill         = "Bill"
	LabelVote         = "Vote"
	LabelExpense      = "Expense"
	LabelPetition     = "Petition"
	LabelOrganization = "Organization"
	LabelLobbyist     = "Lobbyist"
	LabelContract     = "Contract"
	LabelCommittee    = "Committee"
	LabelMeeting      = "Meeting"
	LabelDocument     = "Document"
	LabelStatement    = "Statement"
)

// Relationship types.
const (
	RelMemberOf    = "MEMBER_OF"
	RelSponsored   = "SPONSORED"
	RelVoted       = "VOTED"
	RelConcerns    = "CONCERNS"
	RelIncurred    = "INCURRED"
	RelMetWith     = "MET_WITH"
	RelRepresents  = "REPRESENTS"
	RelLobbiedOn   = "LOBBIED_ON"
	RelDonatedTo   = "DONATED_TO"
	RelReceived    = "RECEIVED"
	RelServesOn    = "SERVES_ON"
	RelReferredTo  = "REFERRED_TO"
	RelHeld        = "HELD"
	RelHasEvidence = "HAS_EVIDENCE"
	RelMade        = "MADE"
	RelPartOf      = "PART_OF"
)
