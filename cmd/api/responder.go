package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/service"
	"github.com/parlgraph/parlgraph/pkg/natsutil"
	"github.com/parlgraph/parlgraph/pkg/resilience"
)

// invoker runs a named operation. *service.Service implements it.
type invoker interface {
	Invoke(ctx context.Context, op string, body json.RawMessage) (any, error)
}

// serveNATS registers one queue-group responder per operation on
// <prefix>.<operation>.
func serveNATS(nc *nats.Conn, svc invoker, prefix, queue string, logger *slog.Logger) error {
	badRequest := func(err error) any {
		return service.Respond(nil, domain.NewValidationError("body", "", err))
	}
	for _, op := range service.Operations() {
		subject := prefix + "." + op
		_, err := natsutil.Reply(nc, subject, queue, func(ctx context.Context, body json.RawMessage) any {
			v, err := svc.Invoke(ctx, op, body)
			if err != nil {
				logger.Debug("nats request failed", "subject", subject, "err", err)
			}
			return service.Respond(v, err)
		}, badRequest)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
	}
	return nc.Flush()
}

// publishBreakerEvent broadcasts a breaker transition. Delivery is best
// effort.
func publishBreakerEvent(nc *nats.Conn, prefix string, from, to resilience.State, logger *slog.Logger) {
	ev := service.BreakerEvent{From: from.String(), To: to.String(), At: time.Now().UTC()}
	if err := natsutil.Publish(context.Background(), nc, service.BreakerSubject(prefix), ev); err != nil {
		logger.Warn("publish breaker event", "err", err)
	}
}
