// Package sqlite provides SQLite implementations of repository interfaces.
// Timestamps are stored as unix microseconds and publish dates as YYYY-MM-DD text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blog/internal/domain/entity"
	"blog/internal/infra/db"
	"blog/internal/repository"
)

const dateLayout = "2006-01-02"

// ArticleRepo implements the ArticleRepository interface using SQLite.
type ArticleRepo struct{ db db.Querier }

// NewArticleRepo creates a new SQLite-backed article repository.
func NewArticleRepo(q db.Querier) repository.ArticleRepository {
	return &ArticleRepo{db: q}
}

const articleColumns = `a.id, a.title, a.content, a.publish_date, a.author_id, a.created_at, a.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner, extra ...any) (*entity.Article, error) {
	var (
		article     entity.Article
		publishDate string
		authorID    sql.NullInt64
		createdAt   int64
		updatedAt   int64
	)
	dest := append([]any{&article.ID, &article.Title, &article.Content, &publishDate,
		&authorID, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, publishDate)
	if err != nil {
		return nil, fmt.Errorf("parse publish_date %q: %w", publishDate, err)
	}
	article.PublishDate = date
	if authorID.Valid {
		id := authorID.Int64
		article.AuthorID = &id
	}
	article.CreatedAt = fromMicros(createdAt)
	article.UpdatedAt = fromMicros(updatedAt)
	return &article, nil
}

func toMicros(t time.Time) int64 { return t.UTC().UnixMicro() }

func fromMicros(us int64) time.Time { return time.UnixMicro(us).UTC() }

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// ListRecent returns the newest articles first together with their author names.
func (repo *ArticleRepo) ListRecent(ctx context.Context, limit int) ([]repository.ArticleWithAuthor, error) {
	const query = `
SELECT ` + articleColumns + `, COALESCE(u.username, '')
FROM articles a
LEFT JOIN users u ON a.author_id = u.id
ORDER BY a.id DESC
LIMIT ?
`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]repository.ArticleWithAuthor, 0, limit)
	for rows.Next() {
		var authorName string
		article, err := scanArticle(rows, &authorName)
		if err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		result = append(result, repository.ArticleWithAuthor{Article: article, AuthorName: authorName})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecent: rows.Err: %w", err)
	}
	return result, nil
}

// Count returns how many articles exist.
func (repo *ArticleRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// List retrieves all articles, newest first.
func (repo *ArticleRepo) List(ctx context.Context) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
ORDER BY a.id DESC
`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 32)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return articles, nil
}

// Get retrieves an article by ID. Returns (nil, nil) when absent.
func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.id = ?
`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

// GetWithAuthor retrieves an article by ID with its author's username.
func (repo *ArticleRepo) GetWithAuthor(ctx context.Context, id int64) (*entity.Article, string, error) {
	const query = `
SELECT ` + articleColumns + `, COALESCE(u.username, '')
FROM articles a
LEFT JOIN users u ON a.author_id = u.id
WHERE a.id = ?
`
	var authorName string
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id), &authorName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("GetWithAuthor: %w", err)
	}
	return article, authorName, nil
}

// Create inserts a new article and sets its ID.
func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles (title, content, publish_date, author_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Content, article.PublishDate.Format(dateLayout),
		nullableID(article.AuthorID), toMicros(article.CreatedAt), toMicros(article.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("Create: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("Create: LastInsertId: %w", err)
	}
	article.ID = id
	return nil
}

// Update writes the mutable columns. created_at is left untouched.
func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles
SET title = ?, content = ?, publish_date = ?, author_id = ?, updated_at = ?
WHERE id = ?
`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Content, article.PublishDate.Format(dateLayout),
		nullableID(article.AuthorID), toMicros(article.UpdatedAt), article.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

// Delete removes an article; its comments go with it.
func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
