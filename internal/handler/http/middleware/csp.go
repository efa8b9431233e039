package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"blog/internal/observability/logging"
)

// directiveOrder keeps the header value stable for caching and tests.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"font-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
	"report-uri",
}

// Policy is a Content-Security-Policy. Methods return a modified copy, so a
// policy shared between handlers is never mutated.
//
//	p := NewPolicy().With("default-src", "'self'").With("img-src", "'self'", "data:")
//	p.Build() // "default-src 'self'; img-src 'self' data:"
type Policy struct {
	directives map[string][]string
	reportOnly bool
}

// NewPolicy returns an empty policy.
func NewPolicy() Policy {
	return Policy{directives: map[string][]string{}}
}

// With sets a directive's sources, replacing earlier values.
func (p Policy) With(directive string, sources ...string) Policy {
	next := make(map[string][]string, len(p.directives)+1)
	for k, v := range p.directives {
		next[k] = v
	}
	next[directive] = append([]string(nil), sources...)
	p.directives = next
	return p
}

// ReportOnly switches the policy between enforcing and report-only.
func (p Policy) ReportOnly(enabled bool) Policy {
	p.reportOnly = enabled
	return p
}

// Build renders the header value. Unknown directives are ignored.
func (p Policy) Build() string {
	var parts []string
	for _, directive := range directiveOrder {
		if sources := p.directives[directive]; len(sources) > 0 {
			parts = append(parts, directive+" "+strings.Join(sources, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// HeaderName returns the header the policy is sent in.
func (p Policy) HeaderName() string {
	if p.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// PagePolicy suits the server-rendered pages: no scripts, same-origin forms only.
func PagePolicy() Policy {
	return NewPolicy().
		With("default-src", "'self'").
		With("script-src", "'none'").
		With("style-src", "'self'").
		With("img-src", "'self'", "data:").
		With("frame-ancestors", "'none'").
		With("form-action", "'self'").
		With("base-uri", "'self'").
		With("object-src", "'none'")
}

// APIPolicy is for JSON endpoints that never render in a browser.
func APIPolicy() Policy {
	return NewPolicy().
		With("default-src", "'none'").
		With("frame-ancestors", "'none'").
		With("base-uri", "'none'").
		With("form-action", "'none'")
}

// CSPMiddlewareConfig selects a policy by path prefix. The longest matching
// prefix wins and DefaultPolicy covers everything else.
type CSPMiddlewareConfig struct {
	Enabled       bool
	DefaultPolicy Policy
	PathPolicies  map[string]Policy
	ReportOnly    bool
}

// CSPMiddleware applies Content-Security-Policy headers to HTTP responses.
type CSPMiddleware struct {
	config CSPMiddlewareConfig
}

// NewCSPMiddleware creates a new CSP middleware with the provided configuration.
func NewCSPMiddleware(config CSPMiddlewareConfig) *CSPMiddleware {
	return &CSPMiddleware{config: config}
}

// Middleware sets the CSP header together with the usual hardening headers.
func (m *CSPMiddleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "same-origin")

			if !m.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			policy := m.selectPolicy(r.URL.Path)
			if m.config.ReportOnly {
				policy = policy.ReportOnly(true)
			}

			if value := policy.Build(); value != "" {
				h.Set(policy.HeaderName(), value)
				if !policy.reportOnly {
					h.Set("X-Frame-Options", "DENY")
				}
				logging.FromContext(r.Context()).Debug("CSP header applied",
					slog.String("path", r.URL.Path),
					slog.String("header", policy.HeaderName()),
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *CSPMiddleware) selectPolicy(path string) Policy {
	longest := ""
	matched := m.config.DefaultPolicy

	for prefix, policy := range m.config.PathPolicies {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(longest) {
			longest = prefix
			matched = policy
		}
	}
	return matched
}
