package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"blog/internal/domain/entity"
	"blog/internal/observability/tracing"
	"blog/internal/repository"
)

// DefaultRecentLimit is the number of articles shown on the homepage.
const DefaultRecentLimit = 5

// CreateInput represents the input parameters for creating a new article.
// A zero PublishDate means today (UTC).
type CreateInput struct {
	Title       string
	Content     string
	PublishDate time.Time
	AuthorID    *int64
}

// UpdateInput represents the input parameters for updating an existing article.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID          int64
	Title       *string
	Content     *string
	PublishDate *time.Time
	AuthorID    *int64
}

// Service provides article management use cases.
type Service struct {
	Repo repository.ArticleRepository

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Truncate(time.Microsecond)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.GetTracer().Start(ctx, "article."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrArticleNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ListRecent returns at most limit articles, newest first, with author names.
// A non-positive limit falls back to DefaultRecentLimit.
func (s *Service) ListRecent(ctx context.Context, limit int) (_ []repository.ArticleWithAuthor, err error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	ctx, span := startSpan(ctx, "ListRecent", attribute.Int("limit", limit))
	defer func() { endSpan(span, err) }()

	articles, err := s.Repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}
	return articles, nil
}

// List retrieves all articles, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Article, error) {
	articles, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Count returns the number of stored articles.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// Get retrieves a single article by its ID.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// GetWithAuthor retrieves a single article by its ID along with the author's username.
// The username is empty for articles without an author.
func (s *Service) GetWithAuthor(ctx context.Context, id int64) (_ *entity.Article, _ string, err error) {
	if id <= 0 {
		return nil, "", ErrInvalidArticleID
	}
	ctx, span := startSpan(ctx, "GetWithAuthor", attribute.Int64("article.id", id))
	defer func() { endSpan(span, err) }()

	article, author, err := s.Repo.GetWithAuthor(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("get article with author: %w", err)
	}
	if article == nil {
		return nil, "", ErrArticleNotFound
	}
	return article, author, nil
}

// Create validates and stores a new article. created_at and updated_at are set to the same instant.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Article, error) {
	if err := entity.ValidateTitle(in.Title); err != nil {
		return nil, err
	}
	if in.AuthorID != nil && *in.AuthorID <= 0 {
		return nil, &entity.ValidationError{Field: "authorID", Message: "must be positive"}
	}

	now := s.now()
	publishDate := in.PublishDate
	if publishDate.IsZero() {
		publishDate = now
	}

	art := &entity.Article{
		Title:       in.Title,
		Content:     in.Content,
		PublishDate: truncateToDate(publishDate),
		AuthorID:    in.AuthorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.Create(ctx, art); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return art, nil
}

// Update modifies an existing article with the provided input.
// Only non-nil fields in the input will be updated.
// updated_at always moves forward, even when the clock has not; created_at is never changed.
func (s *Service) Update(ctx context.Context, in UpdateInput) (_ *entity.Article, err error) {
	if in.ID <= 0 {
		return nil, ErrInvalidArticleID
	}
	ctx, span := startSpan(ctx, "Update", attribute.Int64("article.id", in.ID))
	defer func() { endSpan(span, err) }()

	art, err := s.Repo.Get(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if art == nil {
		return nil, ErrArticleNotFound
	}

	if in.Title != nil {
		if err := entity.ValidateTitle(*in.Title); err != nil {
			return nil, err
		}
		art.Title = *in.Title
	}
	if in.Content != nil {
		art.Content = *in.Content
	}
	if in.PublishDate != nil {
		art.PublishDate = truncateToDate(*in.PublishDate)
	}
	if in.AuthorID != nil {
		if *in.AuthorID <= 0 {
			return nil, &entity.ValidationError{Field: "authorID", Message: "must be positive"}
		}
		art.AuthorID = in.AuthorID
	}

	updated := s.now()
	if !updated.After(art.UpdatedAt) {
		updated = art.UpdatedAt.Add(time.Microsecond)
	}
	art.UpdatedAt = updated

	if err := s.Repo.Update(ctx, art); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return art, nil
}

// Delete removes an article and, through the database, its comments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidArticleID
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
