package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PasswordPolicy constrains passwords accepted when creating users.
type PasswordPolicy struct {
	MinLength     int      `yaml:"min_password_length"`
	WeakPasswords []string `yaml:"weak_passwords"`
}

// SecurityConfig represents the optional security YAML file.
type SecurityConfig struct {
	Security struct {
		Passwords PasswordPolicy `yaml:"passwords"`
	} `yaml:"security"`
}

// DefaultPasswordPolicy is used when no security file is configured.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     12,
		WeakPasswords: []string{"password", "123456", "admin", "test", "secret", "qwerty"},
	}
}

// LoadSecurityConfig loads security configuration from a YAML file.
// Fields left out of the file keep their defaults.
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	// #nosec G304 -- path comes from SECURITY_CONFIG, set by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config SecurityConfig
	config.Security.Passwords = DefaultPasswordPolicy()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateSecurityConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func validateSecurityConfig(config *SecurityConfig) error {
	if config.Security.Passwords.MinLength < 8 {
		return fmt.Errorf("min_password_length must be at least 8")
	}
	return nil
}

// PasswordPolicyFrom loads the policy from path, or returns the default when path is empty.
func PasswordPolicyFrom(path string) (PasswordPolicy, error) {
	if path == "" {
		return DefaultPasswordPolicy(), nil
	}
	cfg, err := LoadSecurityConfig(path)
	if err != nil {
		return PasswordPolicy{}, err
	}
	return cfg.Security.Passwords, nil
}
