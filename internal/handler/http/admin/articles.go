package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"blog/internal/domain/entity"
	"blog/internal/handler/http/pathutil"
	"blog/internal/handler/http/respond"
	"blog/internal/observability/logging"
	"blog/internal/resilience/circuitbreaker"
	artUC "blog/internal/usecase/article"
)

// errorCode maps use case errors to HTTP status codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidationFailed), errors.Is(err, artUC.ErrInvalidArticleID):
		return http.StatusBadRequest
	case errors.Is(err, artUC.ErrArticleNotFound):
		return http.StatusNotFound
	case errors.Is(err, circuitbreaker.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("publish_date must be in YYYY-MM-DD format")
	}
	return t, nil
}

type ListArticlesHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事一覧取得（新しい順）
func (h ListArticlesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, r, errorCode(err), err)
		return
	}

	out := make([]ArticleDTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleDTO(a))
	}
	respond.JSON(w, http.StatusOK, out)
}

type CreateArticleHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事作成
func (h CreateArticleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		PublishDate string `json:"publish_date"`
		AuthorID    *int64 `json:"author_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, r, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	var publishDate time.Time
	if req.PublishDate != "" {
		var err error
		if publishDate, err = parseDate(req.PublishDate); err != nil {
			respond.SafeError(w, r, http.StatusBadRequest, err)
			return
		}
	}

	art, err := h.Svc.Create(r.Context(), artUC.CreateInput{
		Title:       req.Title,
		Content:     req.Content,
		PublishDate: publishDate,
		AuthorID:    req.AuthorID,
	})
	if err != nil {
		respond.SafeError(w, r, errorCode(err), err)
		return
	}

	logging.FromContext(r.Context()).Info("article created",
		slog.Int64("article_id", art.ID))
	respond.JSON(w, http.StatusCreated, toArticleDTO(art))
}

type UpdateArticleHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事更新（指定されたフィールドのみ）
func (h UpdateArticleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, r, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		PublishDate *string `json:"publish_date"`
		AuthorID    *int64  `json:"author_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, r, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	var datePtr *time.Time
	if req.PublishDate != nil {
		d, err := parseDate(*req.PublishDate)
		if err != nil {
			respond.SafeError(w, r, http.StatusBadRequest, err)
			return
		}
		datePtr = &d
	}

	art, err := h.Svc.Update(r.Context(), artUC.UpdateInput{
		ID:          id,
		Title:       req.Title,
		Content:     req.Content,
		PublishDate: datePtr,
		AuthorID:    req.AuthorID,
	})
	if err != nil {
		respond.SafeError(w, r, errorCode(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toArticleDTO(art))
}

type DeleteArticleHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事削除（コメントも削除される）
func (h DeleteArticleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, r, errorCode(err), err)
		return
	}

	logging.FromContext(r.Context()).Info("article deleted",
		slog.Int64("article_id", id))
	w.WriteHeader(http.StatusNoContent)
}
