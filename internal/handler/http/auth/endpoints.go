package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"blog/internal/domain/entity"
	"blog/internal/handler/http/respond"
	"blog/internal/observability/logging"
	"blog/internal/observability/metrics"
	authservice "blog/internal/service/auth"
	"blog/web/templates"
)

// Authenticator checks credentials and signs session tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
	IssueToken(user *entity.User) (string, error)
}

// LoginHandler serves the login form and the cookie-based sign in/out.
type LoginHandler struct {
	Svc          Authenticator
	TTL          time.Duration
	SecureCookie bool

	// Limit, when set, wraps the two routes that check passwords.
	Limit func(http.Handler) http.Handler
}

// Register registers the login, logout and token routes with the given mux.
func Register(mux *http.ServeMux, h LoginHandler) {
	limit := h.Limit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	mux.HandleFunc("GET "+LoginPath, h.Form)
	mux.Handle("POST "+LoginPath, limit(http.HandlerFunc(h.Submit)))
	mux.HandleFunc("POST /accounts/logout/", h.Logout)
	mux.Handle("POST /auth/token", limit(TokenHandler{Svc: h.Svc}))
}

// Form renders the login page.
func (h LoginHandler) Form(w http.ResponseWriter, r *http.Request) {
	if _, ok := FromContext(r.Context()); ok {
		http.Redirect(w, r, SafeRedirectPath(r.URL.Query().Get("next")), http.StatusFound)
		return
	}
	respond.HTML(w, r, http.StatusOK, templates.LoginPage(templates.LoginView{
		Next: r.URL.Query().Get("next"),
	}))
}

// Submit checks the form credentials, sets the session cookie and
// redirects to next. Failures re-render the form with 401.
func (h LoginHandler) Submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.FromContext(r.Context())

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")

	user, err := h.Svc.Authenticate(r.Context(), username, password)
	if err != nil {
		metrics.RecordAuthAttempt(metrics.AuthRouteLogin, RoleAnonymous, false, time.Since(start))
		if !errors.Is(err, authservice.ErrInvalidCredentials) {
			logger.Error("login failed",
				slog.String("error", respond.SanitizeError(err)))
			respond.HTML(w, r, http.StatusInternalServerError, templates.ErrorPage(templates.Viewer{}))
			return
		}
		logger.Warn("login failed",
			slog.String("reason", "invalid_credentials"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		respond.HTML(w, r, http.StatusUnauthorized, templates.LoginPage(templates.LoginView{
			Username: username,
			Next:     next,
			Error:    "Please enter a correct username and password.",
		}))
		return
	}

	token, err := h.Svc.IssueToken(user)
	if err != nil {
		logger.Error("token generation failed",
			slog.String("error", err.Error()))
		respond.HTML(w, r, http.StatusInternalServerError, templates.ErrorPage(templates.Viewer{}))
		return
	}

	role := roleOf(&authservice.Identity{UserID: user.ID, IsStaff: user.IsStaff})
	metrics.RecordAuthAttempt(metrics.AuthRouteLogin, role, true, time.Since(start))
	logger.Info("login successful",
		slog.Int64("user_id", user.ID),
		slog.String("role", role),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, SafeRedirectPath(next), http.StatusFound)
}

// Logout expires the session cookie and redirects home.
func (h LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
