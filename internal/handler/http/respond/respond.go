// Package respond writes JSON and HTML responses.
// Error responses are sanitised so internal details never reach the client.
package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"blog/internal/domain/entity"
	"blog/internal/observability/logging"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダー送信済みのためログのみ
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// safeFragments mark messages that are fine to show to clients.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"too long",
	"too common",
}

// SafeError writes {"error": msg}. Validation errors and messages containing a
// safe fragment are returned as-is; everything else, and every 5xx, becomes
// "internal server error" with the sanitised original logged.
func SafeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	isSafe := errors.Is(err, entity.ErrValidationFailed)
	if !isSafe {
		lower := strings.ToLower(msg)
		for _, frag := range safeFragments {
			if strings.Contains(lower, frag) {
				isSafe = true
				break
			}
		}
	}

	// 500系は常に内部エラー扱い
	if code >= 500 {
		isSafe = false
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	logging.FromContext(r.Context()).Error("internal server error",
		slog.String("path", r.URL.Path),
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// HTML renders the component into a buffer first, so a failed render turns
// into a plain 500 instead of a truncated page.
func HTML(w http.ResponseWriter, r *http.Request, code int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logging.FromContext(r.Context()).Error("failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("error", SanitizeError(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
