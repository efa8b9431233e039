package auth

import "testing"

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/article/1/", "/article/1/"},
		{"/article/1/?x=1", "/article/1/?x=1"},
		{"//evil.example", "/"},
		{"//evil.example/path", "/"},
		{"https://evil.example", "/"},
		{"evil.example", "/"},
		{"/\\evil.example", "/"},
		{"/ok\r\nSet-Cookie: x=1", "/"},
		{"javascript:alert(1)", "/"},
	}
	for _, tt := range tests {
		if got := SafeRedirectPath(tt.next); got != tt.want {
			t.Errorf("SafeRedirectPath(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/accounts/login/"},
		{"/article/12/comment/", "/accounts/login/?next=/article/12/comment/"},
		{"/a b&c", "/accounts/login/?next=/a+b%26c"},
		{"/article/12/comment/?from=home", "/accounts/login/?next=/article/12/comment/%3Ffrom%3Dhome"},
	}
	for _, tt := range tests {
		if got := LoginURL(tt.next); got != tt.want {
			t.Errorf("LoginURL(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}
