package comment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"blog/internal/domain/entity"
	"blog/internal/observability/logging"
	"blog/internal/observability/metrics"
	"blog/internal/observability/tracing"
	"blog/internal/repository"
)

// CreateInput represents a comment submission.
type CreateInput struct {
	ArticleID int64
	UserID    int64
	Content   string
}

// Service provides comment use cases.
type Service struct {
	Repo     repository.CommentRepository
	Articles repository.ArticleRepository

	// Throttle limits submissions per user. Nil disables limiting.
	Throttle *Throttle
}

// ListForArticle returns the article's comments, newest first, with commenter usernames.
func (s *Service) ListForArticle(ctx context.Context, articleID int64) ([]repository.CommentWithUser, error) {
	if articleID <= 0 {
		return nil, ErrInvalidArticleID
	}

	comments, err := s.Repo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments for article: %w", err)
	}
	return comments, nil
}

// List returns every comment with its commenter's username, newest first.
func (s *Service) List(ctx context.Context) ([]repository.CommentWithUser, error) {
	comments, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Create stores a comment by the user on the article.
//
// Returns ErrArticleNotFound when the article does not exist. Content is
// trimmed; blank content is then dropped without error and created is false.
// A *RateLimitError (matching ErrRateLimited) means the user's allowance is
// exhausted and nothing was stored.
func (s *Service) Create(ctx context.Context, in CreateInput) (created bool, err error) {
	if in.ArticleID <= 0 {
		return false, ErrInvalidArticleID
	}
	if in.UserID <= 0 {
		return false, &entity.ValidationError{Field: "userID", Message: "must be positive"}
	}

	ctx, span := tracing.GetTracer().Start(ctx, "comment.Create", trace.WithAttributes(
		attribute.Int64("article.id", in.ArticleID),
		attribute.Int64("user.id", in.UserID),
	))
	defer func() {
		span.SetAttributes(attribute.Bool("comment.created", created))
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	art, err := s.Articles.Get(ctx, in.ArticleID)
	if err != nil {
		return false, fmt.Errorf("get article: %w", err)
	}
	if art == nil {
		return false, ErrArticleNotFound
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		metrics.RecordCommentDiscarded(metrics.DiscardEmpty)
		return false, nil
	}

	if wait := s.Throttle.Reserve(in.UserID); wait > 0 {
		metrics.RecordCommentDiscarded(metrics.DiscardRateLimited)
		logging.FromContext(ctx).Warn("comment rate limited",
			slog.Int64("user_id", in.UserID),
			slog.Int64("article_id", in.ArticleID),
			slog.Duration("retry_after", wait))
		return false, &RateLimitError{RetryAfter: wait}
	}

	c := &entity.Comment{
		Content:   content,
		ArticleID: in.ArticleID,
		UserID:    in.UserID,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return false, fmt.Errorf("create comment: %w", err)
	}

	metrics.RecordCommentCreated()
	return true, nil
}
