// Package comment provides use cases for reading and posting article comments.
package comment

import (
	"errors"
	"time"

	"blog/internal/usecase/article"
)

var (
	// ErrArticleNotFound is article.ErrArticleNotFound, so callers can match either.
	ErrArticleNotFound = article.ErrArticleNotFound

	// ErrInvalidArticleID is article.ErrInvalidArticleID.
	ErrInvalidArticleID = article.ErrInvalidArticleID

	// ErrRateLimited indicates the user has exhausted their comment allowance.
	ErrRateLimited = errors.New("comment rate limit exceeded")
)

// RateLimitError carries how long the user should wait before posting again.
// It matches ErrRateLimited through errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error() + ", retry in " + e.RetryAfter.Round(time.Second).String()
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
