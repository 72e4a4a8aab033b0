// Package semantic searches statement embeddings stored in Qdrant. The
// collection is populated by ingestion; this package only reads it.
package semantic

import (
	"context"
	"fmt"
	"slices"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/parlgraph/parlgraph/pkg/fn"
)

// MinScore matches the full-text relevance threshold.
const MinScore float32 = 0.5

type pointsAPI interface {
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
}

// StatementIndex is a read-only view of the statement embedding collection.
type StatementIndex struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
}

// New connects to Qdrant at the given gRPC address.
func New(addr, collection string) (*StatementIndex, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &StatementIndex{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// NewWithClients builds an index over pre-made clients (tests).
func NewWithClients(points pointsAPI, collections collectionsAPI, collection string) *StatementIndex {
	return &StatementIndex{points: points, collections: collections, collection: collection}
}

// Close closes the underlying gRPC connection.
func (s *StatementIndex) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Ping verifies the collection exists.
func (s *StatementIndex) Ping(ctx context.Context) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	if !slices.ContainsFunc(list.GetCollections(), func(c *pb.CollectionDescription) bool {
		return c.GetName() == s.collection
	}) {
		return fmt.Errorf("semantic: collection %q does not exist", s.collection)
	}
	return nil
}

// Search returns statements scoring above MinScore, best first.
func (s *StatementIndex) Search(ctx context.Context, q Query) ([]Hit, error) {
	threshold := MinScore
	offset := uint64(max(q.Offset, 0))
	req := &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         q.Embedding,
		Limit:          uint64(max(q.Limit, 1)),
		Offset:         &offset,
		ScoreThreshold: &threshold,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	if must := conditions(q); len(must) > 0 {
		req.Filter = &pb.Filter{Must: must}
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	hits := make([]Hit, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		// Qdrant applies the threshold inclusively.
		if r.GetScore() <= MinScore {
			continue
		}
		hits = append(hits, hitFromPoint(r))
	}
	return hits, nil
}

func hitFromPoint(r *pb.ScoredPoint) Hit {
	h := Hit{Score: r.GetScore()}
	for k, v := range r.GetPayload() {
		switch k {
		case "statement_id":
			h.StatementID = v.GetStringValue()
		case "thread_id":
			h.ThreadID = v.GetStringValue()
		case "legislator_id":
			h.LegislatorID = v.GetStringValue()
		case "heading":
			h.Heading = v.GetStringValue()
		case "content":
			h.Content = v.GetStringValue()
		case "date":
			if ts := v.GetIntegerValue(); ts > 0 {
				h.Date = time.Unix(ts, 0).UTC()
			}
		}
	}
	if h.StatementID == "" {
		h.StatementID = r.GetId().GetUuid()
	}
	return h
}

func conditions(q Query) []*pb.Condition {
	keys := fn.SortedKeys(q.Match)
	must := make([]*pb.Condition, 0, len(keys)+1)
	for _, k := range keys {
		must = append(must, fieldMatch(k, q.Match[k]))
	}
	if r := dateRange(q.From, q.To); r != nil {
		must = append(must, &pb.Condition{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{Key: "date", Range: r},
			},
		})
	}
	return must
}

func dateRange(from, to time.Time) *pb.Range {
	if from.IsZero() && to.IsZero() {
		return nil
	}
	r := &pb.Range{}
	if !from.IsZero() {
		gte := float64(from.Unix())
		r.Gte = &gte
	}
	if !to.IsZero() {
		// inclusive of the whole end day
		lte := float64(to.AddDate(0, 0, 1).Unix() - 1)
		r.Lte = &lte
	}
	return r
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}
