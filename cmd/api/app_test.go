package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/config"
	hauth "blog/internal/handler/http/auth"
	"blog/internal/infra/db"
	"blog/internal/infra/db/dbtest"
	"blog/internal/observability/metrics"
	artUC "blog/internal/usecase/article"
	"blog/web/templates"
)

const testPassword = "correct-horse-battery-9"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{
		"DB_DRIVER":        "sqlite",
		"SQLITE_PATH":      ":memory:",
		"SESSION_SECRET":   "a-test-session-secret-that-is-long-enough",
		"LOGIN_RATE_LIMIT": "3",
	})
	require.NoError(t, err)
	return cfg
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := newApp(testConfig(t), logger, dbtest.OpenSQLite(t))
	require.NoError(t, err)
	return a
}

func do(a *app, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, a *app, username string) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {testPassword}, "next": {"/"}}
	req := httptest.NewRequest(http.MethodPost, hauth.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.10:5000"

	rec := do(a, req)
	require.Equal(t, http.StatusFound, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == hauth.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

/* ───────── wiring ───────── */

func TestNewRepos_UnknownDriver(t *testing.T) {
	_, err := newRepos("mysql", nil)
	assert.True(t, errors.Is(err, db.ErrUnsupportedDriver))
}

func TestNewApp_BadTrustedProxy(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.TrustedProxies = []string{"not-an-ip"}

	_, err := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), dbtest.OpenSQLite(t))
	assert.Error(t, err)
}

/* ───────── pages ───────── */

func TestApp_HomeSetsSecurityHeaders(t *testing.T) {
	a := newTestApp(t)

	rec := do(a, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'none'")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestApp_UnknownPageIs404(t *testing.T) {
	a := newTestApp(t)

	rec := do(a, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_Health(t *testing.T) {
	a := newTestApp(t)

	rec := do(a, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = do(a, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

/* ───────── login and comments ───────── */

func TestApp_LoginAndComment(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	user, err := a.Auth.CreateUser(ctx, "alice", testPassword, false)
	require.NoError(t, err)
	art, err := a.Articles.Create(ctx, artUC.CreateInput{Title: "Hello world", Content: "First post", AuthorID: &user.ID})
	require.NoError(t, err)

	cookie := login(t, a, "alice")

	form := url.Values{"content": {"Nice article!"}}
	req := httptest.NewRequest(http.MethodPost, templates.ArticlePath(art.ID)+"comment/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)

	rec := do(a, req)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, templates.ArticlePath(art.ID), rec.Header().Get("Location"))

	rec = do(a, httptest.NewRequest(http.MethodGet, templates.ArticlePath(art.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello world")
	assert.Contains(t, rec.Body.String(), "Nice article!")
}

func TestApp_QuickCommentsAreAllStored(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	user, err := a.Auth.CreateUser(ctx, "bob", testPassword, false)
	require.NoError(t, err)
	art, err := a.Articles.Create(ctx, artUC.CreateInput{Title: "Busy thread", Content: "Talk", AuthorID: &user.ID})
	require.NoError(t, err)
	cookie := login(t, a, "bob")

	const posts = 7
	for i := range posts {
		form := url.Values{"content": {fmt.Sprintf("quick comment %d", i)}}
		req := httptest.NewRequest(http.MethodPost, templates.ArticlePath(art.ID)+"comment/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)

		rec := do(a, req)
		require.Equal(t, http.StatusFound, rec.Code, "post %d", i)
	}

	rec := do(a, httptest.NewRequest(http.MethodGet, templates.ArticlePath(art.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	for i := range posts {
		assert.Contains(t, rec.Body.String(), fmt.Sprintf("quick comment %d", i))
	}
}

func TestApp_AnonymousCommentRedirectsToLogin(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/article/1/comment/", strings.NewReader("content=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := do(a, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), hauth.LoginPath))
}

func TestApp_LoginIsRateLimited(t *testing.T) {
	a := newTestApp(t)

	var last int
	for i := 0; i < 4; i++ {
		form := url.Values{"username": {"nobody"}, "password": {"wrong-password"}}
		req := httptest.NewRequest(http.MethodPost, hauth.LoginPath, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "192.0.2.20:4000"
		last = do(a, req).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestApp_AdminRequiresStaff(t *testing.T) {
	a := newTestApp(t)
	_, err := a.Auth.CreateUser(context.Background(), "bob", testPassword, false)
	require.NoError(t, err)

	rec := do(a, httptest.NewRequest(http.MethodGet, "/admin/articles", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	req := httptest.NewRequest(http.MethodGet, "/admin/articles", nil)
	req.AddCookie(login(t, a, "bob"))
	assert.Equal(t, http.StatusForbidden, do(a, req).Code)
}

/* ───────── background stats ───────── */

func TestApp_RefreshStats(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two"} {
		_, err := a.Articles.Create(ctx, artUC.CreateInput{Title: title})
		require.NoError(t, err)
	}

	a.refreshStats(ctx)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.ArticlesTotal))
}

func TestApp_RecordStatsStopsOnCancel(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Returns after one refresh because ctx is already done.
	a.recordStats(ctx, time.Hour)
}
