package entity

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 150
)

// ValidateTitle checks that an article title is present and at most MaxTitleLength characters.
// Length is counted in runes so multi-byte titles are not penalised.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength),
		}
	}
	return nil
}

// ValidateUsername checks the username length and character set.
// Allowed characters: letters, digits and @ . + - _
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return &ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("must be between %d and %d characters", minUsernameLength, maxUsernameLength),
		}
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return &ValidationError{Field: "username", Message: "contains invalid characters"}
		}
	}
	return nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case strings.ContainsRune("@.+-_", r):
		return true
	}
	return false
}
