package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"blog/internal/handler/http/respond"
	"blog/internal/observability/logging"
	"blog/internal/observability/metrics"
	authservice "blog/internal/service/auth"
	"blog/web/templates"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// CookieName is the session cookie holding the signed token.
const CookieName = "session"

// IdentityResolver turns a session token into the current user.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*authservice.Identity, error)
}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id *authservice.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

// FromContext returns the signed-in identity, if any.
func FromContext(ctx context.Context) (*authservice.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(*authservice.Identity)
	return id, ok && id != nil
}

// Viewer returns the template header state for the request.
func Viewer(ctx context.Context) templates.Viewer {
	if id, ok := FromContext(ctx); ok {
		return templates.Viewer{Username: id.Username}
	}
	return templates.Viewer{}
}

// Session attaches the identity from the session cookie or an
// "Authorization: Bearer" header. Requests without a valid token pass
// through anonymously; a stale cookie is expired.
func Session(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, authservice.ErrInvalidToken) {
					if fromCookie {
						clearSessionCookie(w, r)
					}
				} else {
					logging.FromContext(r.Context()).Warn("session lookup failed",
						slog.String("error", respond.SanitizeError(err)))
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func tokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, prefix)), false
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginRequired redirects anonymous requests to the login page with
// next set to the requested path and query.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			metrics.RecordAuthDenied(metrics.DeniedLoginRedirect, RoleAnonymous)
			http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StaffOnly answers 401 to anonymous and 403 to non-staff requests.
func StaffOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			metrics.RecordAuthDenied(metrics.DeniedUnauthorized, RoleAnonymous)
			w.Header().Set("WWW-Authenticate", `Bearer realm="blog"`)
			respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		if !id.IsStaff {
			metrics.RecordAuthDenied(metrics.DeniedForbidden, roleOf(id))
			logging.FromContext(r.Context()).Warn("forbidden",
				slog.Int64("user_id", id.UserID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			respond.JSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
