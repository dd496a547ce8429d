package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name spans are created under.
const TracerName = "github.com/vango-dev/ssg"

// Span names.
const (
	SpanBuild      = "ssg.build"
	SpanRenderPage = "ssg.render_page"
	SpanCritical   = "ssg.critical"
	SpanDevRequest = "ssg.dev_request"
	SpanLoader     = "ssg.loader"
)

// Attribute keys.
const (
	AttrPath    = attribute.Key("ssg.path")
	AttrKind    = attribute.Key("ssg.adapter")
	AttrRouteID = attribute.Key("ssg.route_id")
	AttrPages   = attribute.Key("ssg.pages")
)

// Tracer returns the tracer from the global provider. Configure it with
// otel.SetTracerProvider before building; the default provider is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span as a child of any span in ctx.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
