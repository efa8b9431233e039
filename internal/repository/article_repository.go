// Package repository declares the persistence contracts used by the use case layer.
// Implementations live under internal/infra/adapter/persistence.
package repository

import (
	"context"

	"blog/internal/domain/entity"
)

// ArticleWithAuthor represents an article along with its author's username.
// AuthorName is empty when the article has no author.
type ArticleWithAuthor struct {
	Article    *entity.Article
	AuthorName string
}

type ArticleRepository interface {
	// ListRecent returns at most limit articles ordered by id DESC.
	ListRecent(ctx context.Context, limit int) ([]ArticleWithAuthor, error)
	// List returns every article ordered by id DESC.
	List(ctx context.Context) ([]*entity.Article, error)
	// Count returns the number of articles.
	Count(ctx context.Context) (int64, error)
	// Get returns (nil, nil) if the article is not found.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// GetWithAuthor retrieves an article by ID and includes the author's username.
	// Returns (nil, "", nil) if the article is not found.
	GetWithAuthor(ctx context.Context, id int64) (*entity.Article, string, error)
	// Create inserts the article and stores the generated ID on it.
	Create(ctx context.Context, article *entity.Article) error
	// Update writes every mutable column. created_at is never written.
	Update(ctx context.Context, article *entity.Article) error
	// Delete removes the article; the database cascades to its comments.
	Delete(ctx context.Context, id int64) error
}
