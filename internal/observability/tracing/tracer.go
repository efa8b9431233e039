package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName names the tracer and the spans it creates.
const ServiceName = "blog"

// GetTracer returns a tracer from the currently registered provider.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "article.ListRecent")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}

// Init installs an SDK tracer provider with the given sampling ratio and the
// W3C trace-context propagator. The returned func flushes and stops the provider.
func Init(ratio float64, opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	}, opts...)
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}
