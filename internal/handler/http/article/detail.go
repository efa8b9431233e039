package article

import (
	"errors"
	"log/slog"
	"net/http"

	"blog/internal/handler/http/auth"
	"blog/internal/handler/http/pathutil"
	"blog/internal/handler/http/respond"
	"blog/internal/observability/logging"
	"blog/internal/resilience/circuitbreaker"
	artUC "blog/internal/usecase/article"
	commentUC "blog/internal/usecase/comment"
	"blog/web/templates"
)

type DetailHandler struct {
	Articles *artUC.Service
	Comments *commentUC.Service
}

// ServeHTTP 記事詳細（コメント付き）
// Unknown and non-numeric ids both render the 404 page.
func (h DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	viewer := auth.Viewer(r.Context())

	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.HTML(w, r, http.StatusNotFound, templates.NotFoundPage(viewer))
		return
	}

	art, author, err := h.Articles.GetWithAuthor(r.Context(), id)
	if err != nil {
		if errors.Is(err, artUC.ErrArticleNotFound) {
			respond.HTML(w, r, http.StatusNotFound, templates.NotFoundPage(viewer))
			return
		}
		serverError(w, r, "get article failed", err)
		return
	}

	comments, err := h.Comments.ListForArticle(r.Context(), id)
	if err != nil {
		serverError(w, r, "list comments failed", err)
		return
	}

	view := templates.DetailView{
		Viewer:      viewer,
		ID:          art.ID,
		Title:       art.Title,
		Content:     art.Content,
		PublishDate: art.PublishDate.Format(templates.DateLayout),
		AuthorName:  author,
		Comments:    make([]templates.CommentView, 0, len(comments)),
		LoginURL:    auth.LoginURL(templates.ArticlePath(art.ID)),
	}
	for _, c := range comments {
		view.Comments = append(view.Comments, templates.CommentView{
			Username: c.Username,
			Content:  c.Comment.Content,
		})
	}
	respond.HTML(w, r, http.StatusOK, templates.DetailPage(view))
}

// serverError logs err and renders the error page: 503 while the database
// breaker is open, 500 otherwise.
func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, circuitbreaker.ErrUnavailable) {
		code = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "30")
	}
	logging.FromContext(r.Context()).Error(msg,
		slog.String("path", r.URL.Path),
		slog.Int("status", code),
		slog.String("error", respond.SanitizeError(err)))
	respond.HTML(w, r, code, templates.ErrorPage(auth.Viewer(r.Context())))
}
