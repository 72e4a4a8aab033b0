package graph

import (
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/parlgraph/parlgraph/engine/domain"
)

// Property decoding is lenient: ingestion writes some numeric fields as
// strings or floats, and missing properties decode to zero values.

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func propInt(props map[string]any, key string) int64 {
	return asInt(props[key])
}

func propFloat(props map[string]any, key string) float64 {
	return asFloat(props[key])
}

func propBool(props map[string]any, key string) bool {
	b, _ := props[key].(bool)
	return b
}

func propTime(props map[string]any, key string) time.Time {
	return asTime(props[key])
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i
		}
		return int64(asFloat(n))
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case dbtype.Date:
		return t.Time()
	case dbtype.LocalDateTime:
		return t.Time()
	case string:
		for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

func asStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func value(rec *neo4j.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

func stringValue(rec *neo4j.Record, key string) string {
	s, _ := value(rec, key).(string)
	return s
}

func intValue(rec *neo4j.Record, key string) int64 { return asInt(value(rec, key)) }

func floatValue(rec *neo4j.Record, key string) float64 { return asFloat(value(rec, key)) }

func timeValue(rec *neo4j.Record, key string) time.Time { return asTime(value(rec, key)) }

// nodeProps returns the properties of the node stored under key, or nil.
func nodeProps(rec *neo4j.Record, key string) (map[string]any, error) {
	node, isNil, err := neo4j.GetRecordValue[dbtype.Node](rec, key)
	if err != nil {
		return nil, err
	}
	if isNil {
		return nil, nil
	}
	return node.Props, nil
}

func legislatorFromProps(p map[string]any) domain.Legislator {
	return domain.Legislator{
		ID:          propString(p, "id"),
		Name:        propString(p, "name"),
		Riding:      propString(p, "riding"),
		Province:    propString(p, "province"),
		Current:     propBool(p, "current"),
		CabinetRole: propString(p, "cabinet_role"),
	}
}

func partyFromProps(p map[string]any) domain.Party {
	return domain.Party{
		Code:  propString(p, "code"),
		Name:  propString(p, "name"),
		Seats: propInt(p, "seats"),
	}
}

func billFromProps(p map[string]any) domain.Bill {
	return domain.Bill{
		ID:         propString(p, "id"),
		Number:     propString(p, "number"),
		Session:    propString(p, "session"),
		Title:      propString(p, "title"),
		Status:     propString(p, "status"),
		Stage:      propString(p, "stage"),
		Government: propBool(p, "government"),
		Chamber:    propString(p, "chamber"),
		Introduced: propTime(p, "introduced"),
	}
}

func committeeFromProps(p map[string]any) domain.Committee {
	return domain.Committee{
		Code:    propString(p, "code"),
		Name:    propString(p, "name"),
		Chamber: propString(p, "chamber"),
	}
}

func statementFromProps(p map[string]any) domain.Statement {
	return domain.Statement{
		ID:       propString(p, "id"),
		Type:     propString(p, "type"),
		Heading:  propString(p, "heading"),
		Content:  propString(p, "content"),
		Date:     propTime(p, "date"),
		ThreadID: propString(p, "thread_id"),
		ParentID: propString(p, "parent_id"),
		Sequence: propInt(p, "sequence"),
	}
}
