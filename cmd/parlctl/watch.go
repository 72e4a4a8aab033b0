package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/parlgraph/parlgraph/engine/service"
	"github.com/parlgraph/parlgraph/pkg/natsutil"
	"github.com/spf13/cobra"
)

func watchCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream graph store breaker events from a running server",
		Long: `watch subscribes to the server's breaker events over NATS and prints
one JSON object per state change. It requires --nats.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.natsURL == "" {
				return errors.New("watch requires --nats")
			}
			nc, err := nats.Connect(a.opts.natsURL, nats.Name("parlctl"))
			if err != nil {
				return fmt.Errorf("nats connect: %w", err)
			}
			defer nc.Close()
			return watch(cmd.Context(), nc, a.opts.prefix, count, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many events (0 waits until interrupted)")
	return cmd
}

// watch prints breaker events until ctx is done or count events were seen.
func watch(ctx context.Context, nc *nats.Conn, prefix string, count int, w io.Writer) error {
	events := make(chan service.BreakerEvent)
	done := make(chan struct{})
	defer close(done)

	sub, err := natsutil.Subscribe(nc, service.BreakerSubject(prefix), func(_ context.Context, ev service.BreakerEvent) {
		select {
		case events <- ev:
		case <-done:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()
	if err := nc.Flush(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for seen := 0; count <= 0 || seen < count; seen++ {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
