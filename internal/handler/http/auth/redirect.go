package auth

import (
	"net/url"
	"strings"
)

// LoginPath is the login page; LoginRequired sends anonymous users here.
const LoginPath = "/accounts/login/"

// LoginURL returns the login page URL that returns to next after signing in.
// Slashes in next are left unescaped: /accounts/login/?next=/article/1/comment/
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	q := strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
	return LoginPath + "?next=" + q
}

// SafeRedirectPath returns next when it is a local absolute path, otherwise "/".
// Scheme-relative URLs (//host), backslash tricks and absolute URLs are rejected.
func SafeRedirectPath(next string) string {
	if next == "" || next[0] != '/' {
		return "/"
	}
	if strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n\t") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
