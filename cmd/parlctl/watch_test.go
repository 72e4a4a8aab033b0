package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/parlgraph/parlgraph/engine/service"
	"github.com/parlgraph/parlgraph/pkg/natsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestNATS(t *testing.T) *natsserver.Server {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	require.NoError(t, err)
	srv.Start()
	require.True(t, srv.ReadyForConnections(3*time.Second), "nats not ready")
	t.Cleanup(srv.Shutdown)
	return srv
}

func TestWatch(t *testing.T) {
	srv := startTestNATS(t)
	pub, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer pub.Close()

	cmd := rootCmd(openBackend)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", "--nats", srv.ClientURL(), "--subject-prefix", "pg", "--count", "1"})

	errc := make(chan error, 1)
	go func() { errc <- cmd.Execute() }()

	ev := service.BreakerEvent{From: "closed", To: "open", At: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-errc:
			require.NoError(t, err)
			assert.JSONEq(t, `{"from":"closed","to":"open","at":"2024-06-01T12:00:00Z"}`, out.String())
			return
		case <-tick.C:
			// the subscription may not exist yet; keep publishing until it is seen
			require.NoError(t, natsutil.Publish(context.Background(), pub, service.BreakerSubject("pg"), ev))
		case <-deadline:
			t.Fatal("watch did not return")
		}
	}
}

func TestWatch_RequiresNATS(t *testing.T) {
	_, err := execute(t, &fakeBackend{}, "watch")
	assert.ErrorContains(t, err, "requires --nats")
}

func TestWatch_StopsOnCancel(t *testing.T) {
	srv := startTestNATS(t)
	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	require.NoError(t, watch(ctx, nc, "pg", 0, &out))
	assert.Empty(t, out.String())
}
