package http

import (
	"net/http"

	"blog/internal/handler/http/respond"
)

// headerLimits caps the headers the blog actually reads. A session JWT is well
// under 1KB either as a cookie or a bearer token.
var headerLimits = []struct {
	name string
	max  int
	msg  string
}{
	{"Authorization", 8 << 10, "authorization header too large"},
	{"Cookie", 8 << 10, "cookie header too large"},
}

const maxPathLength = 2 << 10

// InputValidation returns middleware that rejects oversized auth headers (400)
// and paths (414) before routing, and caps the request body at maxBody bytes.
// Reads past the cap fail with *http.MaxBytesError.
func InputValidation(maxBody int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, l := range headerLimits {
				if len(r.Header.Get(l.name)) > l.max {
					writeProblem(w, r, http.StatusBadRequest, l.msg)
					return
				}
			}
			if len(r.URL.Path) > maxPathLength {
				writeProblem(w, r, http.StatusRequestURITooLong, "URI too long")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
			next.ServeHTTP(w, r)
		})
	}
}

// writeProblem answers in JSON on API routes and in plain text on pages.
func writeProblem(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if wantsJSON(r) {
		respond.JSON(w, code, map[string]string{"error": msg})
		return
	}
	http.Error(w, msg, code)
}
