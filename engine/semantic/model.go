package semantic

import "time"

// Hit is a statement whose embedding is similar to the query.
type Hit struct {
	StatementID  string    `json:"statement_id"`
	Score        float32   `json:"score"`
	ThreadID     string    `json:"thread_id,omitempty"`
	LegislatorID string    `json:"legislator_id,omitempty"`
	Heading      string    `json:"heading,omitempty"`
	Content      string    `json:"content"`
	Date         time.Time `json:"date,omitzero"`
}

// Query is a similarity search over statement embeddings.
type Query struct {
	Embedding []float32
	Offset    int
	Limit     int
	// Optional inclusive date bounds matched against the "date" payload
	// field, stored as unix seconds.
	From, To time.Time
	// Keyword payload filters, e.g. legislator_id.
	Match map[string]string
}
