package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"blog/internal/handler/http/requestid"
	"blog/internal/handler/http/respond"
	"blog/internal/handler/http/responsewriter"
	"blog/internal/observability/logging"
	"blog/web/templates"
)

// Logging returns middleware that writes one structured line per request.
// Handlers below it get a logger carrying request_id and trace_id from
// logging.FromContext.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logging.ForRequest(r.Context(), logger)
			rw := responsewriter.Wrap(w)

			next.ServeHTTP(rw, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))

			elapsed := time.Since(start)
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int("status", rw.StatusCode()),
				slog.Int("bytes", rw.BytesWritten()),
				slog.Duration("duration", elapsed),
				slog.String("duration_ms", fmt.Sprintf("%.2f", elapsed.Seconds()*1000)),
			}
			if loc := rw.Location(); loc != "" {
				attrs = append(attrs, slog.String("location", loc))
			}

			level := slog.LevelInfo
			if rw.StatusCode() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			reqLogger.Log(r.Context(), level, "request completed", attrs...)
		})
	}
}

// jsonPrefixes are the route groups that answer in JSON rather than HTML.
var jsonPrefixes = []string{"/admin/", "/auth/"}

func wantsJSON(r *http.Request) bool {
	for _, p := range jsonPrefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// Recover returns middleware that catches panics, logs them with the stack and
// answers 500 in the format the route normally speaks.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				// リクエストID を取得
				reqID := requestid.FromContext(r.Context())

				if wantsJSON(r) {
					respond.SafeError(w, r, http.StatusInternalServerError, fmt.Errorf("internal error"))
				} else {
					respond.HTML(w, r, http.StatusInternalServerError, templates.ErrorPage(templates.Viewer{}))
				}

				// 構造化ログで記録
				logger.Error("panic recovered",
					slog.String("request_id", reqID),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
