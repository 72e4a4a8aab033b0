package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	op     string
	body   string
	result string
	err    error
	closed bool
}

func (f *fakeBackend) Invoke(_ context.Context, op string, req any) (json.RawMessage, error) {
	f.op = op
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.result), nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func execute(t *testing.T, b *fakeBackend, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd(func(options) (backend, error) { return b, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		op   string
		body string
	}{
		{"scorecard", []string{"scorecard", "m-1"}, service.OpScorecard, `{"id":"m-1"}`},
		{"legislators", []string{"legislators", "smith", "--party", "NDP", "--current"}, service.OpSearchLegislators,
			`{"text":"smith","party":"NDP","current_only":true,"offset":0,"limit":0}`},
		{"bills", []string{"bills", "--status", "Passed", "--limit", "10"}, service.OpSearchBills,
			`{"status":"Passed","offset":0,"limit":10}`},
		{"bills with dates", []string{"bills", "--from", "2023-04-01", "--to", "2024-03-31"}, service.OpSearchBills,
			`{"introduced":{"from":"2023-04-01T00:00:00Z","to":"2024-03-31T00:00:00Z"},"offset":0,"limit":0}`},
		{"statements", []string{"statements", "housing", "--mode", "semantic"}, service.OpSearchStatements,
			`{"text":"housing","mode":"semantic","offset":0,"limit":0}`},
		{"thread", []string{"thread", "t-1"}, service.OpStatementThread, `{"id":"t-1"}`},
		{"lobbying", []string{"lobbying", "44-1", "C-11"}, service.OpBillLobbying, `{"number":"C-11","session":"44-1"}`},
		{"conflicts", []string{"conflicts", "--limit", "5"}, service.OpConflicts, `{"limit":5}`},
		{"spending all years", []string{"spending"}, service.OpSpendingTrends, `{}`},
		{"spending one year", []string{"spending", "--fiscal-year", "2024"}, service.OpSpendingTrends, `{"fiscal_year":2024}`},
		{"committee", []string{"committee", "FINA"}, service.OpCommitteeActivity, `{"code":"FINA"}`},
		{"baseline", []string{"baseline", "LIB"}, service.OpPartyBaseline, `{"code":"LIB"}`},
		{"parties", []string{"parties"}, service.OpListParties, `null`},
		{"committees", []string{"committees"}, service.OpListCommittees, `null`},
		{"stats", []string{"stats"}, service.OpGraphStats, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{result: `{"ok":true}`}
			out, err := execute(t, b, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.op, b.op)
			assert.JSONEq(t, tt.body, b.body)
			assert.JSONEq(t, `{"ok":true}`, out)
			assert.True(t, b.closed)
		})
	}
}

func TestCommand_Pretty(t *testing.T) {
	out, err := execute(t, &fakeBackend{result: `{"a":1}`}, "stats", "--pretty")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out)
}

func TestCommand_BadDate(t *testing.T) {
	b := &fakeBackend{}
	_, err := execute(t, b, "bills", "--from", "April 1")
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.Empty(t, b.op)
}

func TestCommand_ArgCount(t *testing.T) {
	_, err := execute(t, &fakeBackend{}, "lobbying", "44-1")
	assert.Error(t, err)
}

func TestCommand_BackendError(t *testing.T) {
	b := &fakeBackend{err: &service.ErrorBody{Code: "not_found", Message: `legislator "x" not found`}}
	_, err := execute(t, b, "scorecard", "x")
	require.Error(t, err)
	var body *service.ErrorBody
	require.True(t, errors.As(err, &body))
	assert.Equal(t, "not_found", body.Code)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, &fakeBackend{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
