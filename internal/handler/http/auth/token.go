package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"blog/internal/handler/http/respond"
	"blog/internal/observability/logging"
	"blog/internal/observability/metrics"
	authservice "blog/internal/service/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// TokenHandler exchanges JSON credentials for a bearer token, for admin API clients.
type TokenHandler struct{ Svc Authenticator }

func (h TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.FromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordAuthAttempt(metrics.AuthRouteToken, RoleAnonymous, false, time.Since(start))
		respond.SafeError(w, r, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	user, err := h.Svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.RecordAuthAttempt(metrics.AuthRouteToken, RoleAnonymous, false, time.Since(start))
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			logger.Warn("token request failed", slog.String("reason", "invalid_credentials"))
			respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		respond.SafeError(w, r, http.StatusInternalServerError, err)
		return
	}

	signed, err := h.Svc.IssueToken(user)
	if err != nil {
		respond.SafeError(w, r, http.StatusInternalServerError, err)
		return
	}

	role := roleOf(&authservice.Identity{UserID: user.ID, IsStaff: user.IsStaff})
	metrics.RecordAuthAttempt(metrics.AuthRouteToken, role, true, time.Since(start))
	logger.Info("token issued",
		slog.Int64("user_id", user.ID),
		slog.String("role", role))

	respond.JSON(w, http.StatusOK, tokenResponse{Token: signed})
}
