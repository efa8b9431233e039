package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "security.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSecurityConfig(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		errorMsg    string
		wantMin     int
		wantWeak    int
	}{
		{
			name: "valid config",
			configYAML: `security:
  passwords:
    min_password_length: 14
    weak_passwords:
      - "admin"
      - "password"
`,
			wantMin:  14,
			wantWeak: 2,
		},
		{
			name: "missing fields keep defaults",
			configYAML: `security:
  passwords: {}
`,
			wantMin:  12,
			wantWeak: len(DefaultPasswordPolicy().WeakPasswords),
		},
		{
			name: "min length too small",
			configYAML: `security:
  passwords:
    min_password_length: 4
`,
			expectError: true,
			errorMsg:    "at least 8",
		},
		{
			name:        "invalid yaml",
			configYAML:  "security: [unterminated",
			expectError: true,
			errorMsg:    "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadSecurityConfig(writeConfig(t, tt.configYAML))
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := cfg.Security.Passwords.MinLength; got != tt.wantMin {
				t.Errorf("MinLength = %d, want %d", got, tt.wantMin)
			}
			if got := len(cfg.Security.Passwords.WeakPasswords); got != tt.wantWeak {
				t.Errorf("len(WeakPasswords) = %d, want %d", got, tt.wantWeak)
			}
		})
	}
}

func TestLoadSecurityConfig_MissingFile(t *testing.T) {
	_, err := LoadSecurityConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestPasswordPolicyFrom(t *testing.T) {
	policy, err := PasswordPolicyFrom("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.MinLength != DefaultPasswordPolicy().MinLength {
		t.Errorf("expected default policy, got %+v", policy)
	}

	path := writeConfig(t, "security:\n  passwords:\n    min_password_length: 20\n")
	policy, err = PasswordPolicyFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.MinLength != 20 {
		t.Errorf("MinLength = %d, want 20", policy.MinLength)
	}
}
