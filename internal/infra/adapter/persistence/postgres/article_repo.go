// Package postgres implements the repository interfaces on PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog/internal/domain/entity"
	"blog/internal/infra/db"
	"blog/internal/repository"
)

type ArticleRepo struct {
	db db.Querier
}

func NewArticleRepo(q db.Querier) repository.ArticleRepository {
	return &ArticleRepo{db: q}
}

const articleColumns = `a.id, a.title, a.content, a.publish_date, a.author_id, a.created_at, a.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner, extra ...any) (*entity.Article, error) {
	var (
		article  entity.Article
		authorID sql.NullInt64
	)
	dest := append([]any{&article.ID, &article.Title, &article.Content, &article.PublishDate,
		&authorID, &article.CreatedAt, &article.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if authorID.Valid {
		id := authorID.Int64
		article.AuthorID = &id
	}
	return &article, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (repo *ArticleRepo) ListRecent(ctx context.Context, limit int) ([]repository.ArticleWithAuthor, error) {
	const query = `
SELECT ` + articleColumns + `, COALESCE(u.username, '') AS author_name
FROM articles a
LEFT JOIN users u ON a.author_id = u.id
ORDER BY a.id DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]repository.ArticleWithAuthor, 0, limit)
	for rows.Next() {
		var authorName string
		article, err := scanArticle(rows, &authorName)
		if err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		result = append(result, repository.ArticleWithAuthor{
			Article:    article,
			AuthorName: authorName,
		})
	}
	return result, rows.Err()
}

func (repo *ArticleRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) List(ctx context.Context) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
ORDER BY a.id DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
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
	return articles, rows.Err()
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.id = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetWithAuthor(ctx context.Context, id int64) (*entity.Article, string, error) {
	const query = `
SELECT ` + articleColumns + `, COALESCE(u.username, '') AS author_name
FROM articles a
LEFT JOIN users u ON a.author_id = u.id
WHERE a.id = $1
LIMIT 1`
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

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (title, content, publish_date, author_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		article.Title, article.Content, article.PublishDate,
		nullableID(article.AuthorID), article.CreatedAt, article.UpdatedAt,
	).Scan(&article.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles SET
       title        = $1,
       content      = $2,
       publish_date = $3,
       author_id    = $4,
       updated_at   = $5
WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Content, article.PublishDate,
		nullableID(article.AuthorID), article.UpdatedAt, article.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
