// Package admin provides the staff-only JSON endpoints for managing articles
// and reviewing comments.
package admin

import (
	"time"

	"blog/internal/domain/entity"
	"blog/internal/repository"
)

// DateLayout is the wire format of publish_date.
const DateLayout = "2006-01-02"

// ArticleDTO represents the JSON structure for article data transfer.
type ArticleDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishDate string    `json:"publish_date"`
	AuthorID    *int64    `json:"author_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CommentDTO represents a comment in the admin listing.
type CommentDTO struct {
	ID        int64  `json:"id"`
	ArticleID int64  `json:"article_id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
}

func toArticleDTO(a *entity.Article) ArticleDTO {
	return ArticleDTO{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		PublishDate: a.PublishDate.Format(DateLayout),
		AuthorID:    a.AuthorID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toCommentDTO(c repository.CommentWithUser) CommentDTO {
	return CommentDTO{
		ID:        c.Comment.ID,
		ArticleID: c.Comment.ArticleID,
		UserID:    c.Comment.UserID,
		Username:  c.Username,
		Content:   c.Comment.Content,
	}
}
