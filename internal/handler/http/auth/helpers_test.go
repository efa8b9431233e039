package auth

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"blog/internal/domain/entity"
	authservice "blog/internal/service/auth"
)

// fakeAuth is an in-memory Authenticator and IdentityResolver.
// Tokens are "tok-<username>".
type fakeAuth struct {
	users    map[string]*entity.User
	password string
	err      error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users: map[string]*entity.User{
			"alice": {ID: 1, Username: "alice"},
			"staff": {ID: 2, Username: "staff", IsStaff: true},
		},
		password: "correct-horse-battery",
	}
}

func (f *fakeAuth) Authenticate(_ context.Context, username, password string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok || password != f.password {
		return nil, authservice.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeAuth) IssueToken(u *entity.User) (string, error) {
	return "tok-" + u.Username, nil
}

func (f *fakeAuth) Resolve(_ context.Context, token string) (*authservice.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if token == "tok-"+u.Username {
			return &authservice.Identity{UserID: u.ID, Username: u.Username, IsStaff: u.IsStaff}, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown token", authservice.ErrInvalidToken)
}

// testSuccessHandler writes "success", or the signed-in username when there is one
func testSuccessHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body := "success"
		if id, ok := FromContext(r.Context()); ok {
			body = id.Username
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}
}
