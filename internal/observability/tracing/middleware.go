package tracing

import (
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader carries the trace id back to the client.
const TraceIDHeader = "X-Trace-Id"

// statusRecorder remembers the status and body size for the span.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func stripMethod(pattern string) string {
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		return pattern[i+1:]
	}
	return pattern
}

func nameAfterRoute(r *http.Request, span trace.Span) {
	if r.Pattern == "" {
		return
	}
	span.SetName(r.Method + " " + stripMethod(r.Pattern))
	span.SetAttributes(attribute.String("http.route", r.Pattern))
}

// Middleware starts a server span per request, continuing any W3C trace
// context the client sent, and returns the trace id in X-Trace-Id.
//
// The span is named "METHOD /path" until a ServeMux pattern is known; see Route.
// 5xx responses set the span status to Error. 4xx do not: a missing article
// is the client's problem, not the server's.
//
//	handler := tracing.Middleware(tracing.Route(mux))
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := GetTracer().Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.path", r.URL.Path),
			),
		)
		defer span.End()

		w.Header().Set(TraceIDHeader, span.SpanContext().TraceID().String())

		rec := &statusRecorder{ResponseWriter: w}
		r = r.WithContext(ctx)
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		nameAfterRoute(r, span)
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int("http.response_size", rec.size),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
		}
	})
}

// Route renames the active span after the ServeMux pattern that matched.
// Wrap the mux itself with it when other middleware sits between Middleware and
// the mux, because those layers hand the mux a copy of the request.
func Route(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		nameAfterRoute(r, trace.SpanFromContext(r.Context()))
	})
}
