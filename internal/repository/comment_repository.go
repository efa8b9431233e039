package repository

import (
	"context"

	"blog/internal/domain/entity"
)

// CommentWithUser represents a comment along with the commenter's username.
type CommentWithUser struct {
	Comment  *entity.Comment
	Username string
}

type CommentRepository interface {
	// ListByArticle returns the article's comments ordered by id DESC (newest first).
	ListByArticle(ctx context.Context, articleID int64) ([]CommentWithUser, error)
	// List returns every comment with its commenter's username, ordered by id DESC.
	List(ctx context.Context) ([]CommentWithUser, error)
	// CountByArticle returns how many comments reference the article.
	CountByArticle(ctx context.Context, articleID int64) (int64, error)
	// Create inserts the comment and stores the generated ID on it.
	Create(ctx context.Context, comment *entity.Comment) error
}
