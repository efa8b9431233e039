// Package entity defines the core domain entities and validation logic for the application.
// It contains the blog's business objects (Article, Comment, User) along with
// their validation rules and domain-specific errors.
package entity

import "time"

// MaxTitleLength is the maximum number of characters allowed in an article title.
const MaxTitleLength = 60

// Article represents a blog post.
// AuthorID is nil when the article has no author.
type Article struct {
	ID          int64
	Title       string
	Content     string
	PublishDate time.Time
	AuthorID    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// String returns the article title.
func (a *Article) String() string {
	return a.Title
}
