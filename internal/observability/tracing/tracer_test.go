package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_SamplingRatio(t *testing.T) {
	t.Cleanup(func() {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	})

	tests := []struct {
		name    string
		ratio   float64
		sampled bool
	}{
		{"always", 1, true},
		{"never", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := tracetest.NewInMemoryExporter()
			shutdown := Init(tt.ratio, sdktrace.WithSyncer(exporter))

			_, span := GetTracer().Start(context.Background(), "article.ListRecent")
			if got := span.SpanContext().IsSampled(); got != tt.sampled {
				t.Errorf("IsSampled() = %v, want %v", got, tt.sampled)
			}
			span.End()

			// The in-memory exporter forgets its spans on shutdown, so read them first.
			want := 0
			if tt.sampled {
				want = 1
			}
			if got := len(exporter.GetSpans()); got != want {
				t.Errorf("exported %d spans, want %d", got, want)
			}

			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}

func TestInit_InstallsTraceContextPropagator(t *testing.T) {
	t.Cleanup(func() {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	})

	shutdown := Init(1)
	defer func() { _ = shutdown(context.Background()) }()

	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("propagator fields %v do not include traceparent", fields)
	}
}
