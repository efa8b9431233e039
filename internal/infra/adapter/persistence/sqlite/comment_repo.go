package sqlite

import (
	"context"
	"fmt"

	"blog/internal/domain/entity"
	"blog/internal/infra/db"
	"blog/internal/repository"
)

// CommentRepo implements the CommentRepository interface using SQLite.
type CommentRepo struct{ db db.Querier }

// NewCommentRepo creates a new SQLite-backed comment repository.
func NewCommentRepo(q db.Querier) repository.CommentRepository {
	return &CommentRepo{db: q}
}

// ListByArticle returns the article's comments, newest first.
func (repo *CommentRepo) ListByArticle(ctx context.Context, articleID int64) ([]repository.CommentWithUser, error) {
	const query = `
SELECT c.id, c.content, c.article_id, c.user_id, u.username
FROM comments c
INNER JOIN users u ON c.user_id = u.id
WHERE c.article_id = ?
ORDER BY c.id DESC
`
	rows, err := repo.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("ListByArticle: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []repository.CommentWithUser
	for rows.Next() {
		var (
			comment  entity.Comment
			username string
		)
		if err := rows.Scan(&comment.ID, &comment.Content, &comment.ArticleID, &comment.UserID, &username); err != nil {
			return nil, fmt.Errorf("ListByArticle: Scan: %w", err)
		}
		result = append(result, repository.CommentWithUser{Comment: &comment, Username: username})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByArticle: rows.Err: %w", err)
	}
	return result, nil
}

// List returns every comment with its commenter, newest first.
func (repo *CommentRepo) List(ctx context.Context) ([]repository.CommentWithUser, error) {
	const query = `
SELECT c.id, c.content, c.article_id, c.user_id, u.username
FROM comments c
INNER JOIN users u ON c.user_id = u.id
ORDER BY c.id DESC
`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []repository.CommentWithUser
	for rows.Next() {
		var (
			comment  entity.Comment
			username string
		)
		if err := rows.Scan(&comment.ID, &comment.Content, &comment.ArticleID, &comment.UserID, &username); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		comments = append(comments, repository.CommentWithUser{Comment: &comment, Username: username})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return comments, nil
}

// CountByArticle counts the comments attached to an article.
func (repo *CommentRepo) CountByArticle(ctx context.Context, articleID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM comments WHERE article_id = ?`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, articleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByArticle: %w", err)
	}
	return count, nil
}

// Create inserts a comment and sets its ID.
func (repo *CommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	const query = `INSERT INTO comments (content, article_id, user_id) VALUES (?, ?, ?)`
	res, err := repo.db.ExecContext(ctx, query, comment.Content, comment.ArticleID, comment.UserID)
	if err != nil {
		return fmt.Errorf("Create: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("Create: LastInsertId: %w", err)
	}
	comment.ID = id
	return nil
}
