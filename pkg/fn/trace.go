package fn

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "parlgraph/pkg/fn"

// Traced wraps a Task in an OTel span named name.
func Traced(name string, t Task) Task {
	return func(ctx context.Context) error {
		ctx, span := otel.Tracer(tracerName).Start(ctx, name)
		defer span.End()
		err := t(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}

// Span runs f inside an OTel span and returns its value.
func Span[T any](ctx context.Context, name string, f func(context.Context) (T, error)) (T, error) {
	var out T
	err := Traced(name, func(ctx context.Context) error {
		v, err := f(ctx)
		out = v
		return err
	})(ctx)
	return out, err
}
