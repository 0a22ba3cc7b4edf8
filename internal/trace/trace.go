// Package trace wraps DataDog/dd-trace-go's opentracing.Tracer around
// Migrator.Run, each writer's row write and each checkpoint save, giving the
// migration a span tree even though spec.md's scope stops at decoding.
package trace

import (
	"context"
	"io"

	ddtracer "github.com/DataDog/dd-trace-go/opentracing"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
)

// Init installs a DataDog-backed opentracing.Tracer as the global tracer
// for serviceName and returns a closer to flush spans on shutdown. When
// enabled is false it installs opentracing's no-op tracer instead, so
// callers can leave Start/Finish calls in place unconditionally.
func Init(serviceName string, enabled bool) (io.Closer, error) {
	tracer, closer, err := ddtracer.NewTracer(&ddtracer.Configuration{
		ServiceName: serviceName,
		Enabled:     enabled,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create datadog tracer")
	}

	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}

// StartSpan starts a child span named operationName under ctx's span, if
// any, and returns the span along with a context carrying it.
func StartSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContext(ctx, operationName)
}

// FinishWithError finishes span, tagging it as an error span when err is
// non-nil.
func FinishWithError(span opentracing.Span, err error) {
	if err != nil {
		ext.Error.Set(span, true)
	}
	span.Finish()
}
