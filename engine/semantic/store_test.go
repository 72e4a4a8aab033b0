package semantic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/testing/protocmp"
)

type mockPoints struct {
	resp *pb.SearchResponse
	err  error
	got  *pb.SearchPoints
}

func (m *mockPoints) Search(_ context.Context, in *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.got = in
	return m.resp, m.err
}

type mockCollections struct {
	resp *pb.ListCollectionsResponse
	err  error
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	return m.resp, m.err
}

func str(s string) *pb.Value { return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}} }

func TestSearch(t *testing.T) {
	pts := &mockPoints{resp: &pb.SearchResponse{Result: []*pb.ScoredPoint{
		{
			Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "u1"}},
			Score: 0.91,
			Payload: map[string]*pb.Value{
				"statement_id":  str("s1"),
				"legislator_id": str("m1"),
				"content":       str("carbon pricing"),
				"date":          {Kind: &pb.Value_IntegerValue{IntegerValue: 1717200000}},
			},
		},
		{Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "u2"}}, Score: 0.5},
	}}}
	idx := NewWithClients(pts, &mockCollections{}, "statements")

	hits, err := idx.Search(context.Background(), Query{Embedding: []float32{1, 0}, Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, hits, 1, "a score equal to the threshold is dropped")
	assert.Equal(t, "s1", hits[0].StatementID)
	assert.Equal(t, "m1", hits[0].LegislatorID)
	assert.Equal(t, 2024, hits[0].Date.Year())

	require.NotNil(t, pts.got.ScoreThreshold)
	assert.Equal(t, MinScore, *pts.got.ScoreThreshold)
	assert.Equal(t, uint64(10), pts.got.Limit)
	assert.Equal(t, uint64(20), pts.got.GetOffset())
	assert.Nil(t, pts.got.Filter)
}

func TestSearch_FallsBackToPointID(t *testing.T) {
	pts := &mockPoints{resp: &pb.SearchResponse{Result: []*pb.ScoredPoint{
		{Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "u9"}}, Score: 0.8},
	}}}
	hits, err := NewWithClients(pts, nil, "c").Search(context.Background(), Query{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "u9", hits[0].StatementID)
}

func TestSearch_Filters(t *testing.T) {
	pts := &mockPoints{resp: &pb.SearchResponse{}}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewWithClients(pts, nil, "c").Search(context.Background(), Query{
		Limit: 5,
		From:  from,
		Match: map[string]string{"thread_id": "t1", "legislator_id": "m1"},
	})
	require.NoError(t, err)
	must := pts.got.GetFilter().GetMust()
	require.Len(t, must, 3)
	assert.Equal(t, "legislator_id", must[0].GetField().GetKey())
	assert.Equal(t, "thread_id", must[1].GetField().GetKey())
	rng := must[2].GetField().GetRange()
	assert.Equal(t, float64(from.Unix()), rng.GetGte())
	assert.Nil(t, rng.Lte)
}

func TestSearch_DateRangeCoversWholeEndDay(t *testing.T) {
	pts := &mockPoints{resp: &pb.SearchResponse{}}
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	_, err := NewWithClients(pts, nil, "c").Search(context.Background(), Query{Limit: 5, To: to})
	require.NoError(t, err)

	lte := float64(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Unix() - 1)
	want := &pb.Filter{Must: []*pb.Condition{{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{Key: "date", Range: &pb.Range{Lte: &lte}},
		},
	}}}
	if diff := cmp.Diff(want, pts.got.GetFilter(), protocmp.Transform()); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_Error(t *testing.T) {
	pts := &mockPoints{err: errors.New("unavailable")}
	_, err := NewWithClients(pts, nil, "c").Search(context.Background(), Query{Limit: 1})
	assert.ErrorContains(t, err, "semantic: search")
}

func TestPing(t *testing.T) {
	cols := &mockCollections{resp: &pb.ListCollectionsResponse{
		Collections: []*pb.CollectionDescription{{Name: "other"}, {Name: "statements"}},
	}}
	assert.NoError(t, NewWithClients(nil, cols, "statements").Ping(context.Background()))
	assert.Error(t, NewWithClients(nil, cols, "missing").Ping(context.Background()))
}

func TestClose_NilConn(t *testing.T) {
	assert.NoError(t, NewWithClients(nil, nil, "c").Close())
}
