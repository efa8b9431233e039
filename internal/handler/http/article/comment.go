package article

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"blog/internal/handler/http/auth"
	"blog/internal/handler/http/pathutil"
	"blog/internal/handler/http/respond"
	artUC "blog/internal/usecase/article"
	commentUC "blog/internal/usecase/comment"
	"blog/web/templates"
)

// CommentHandler must sit behind auth.LoginRequired.
type CommentHandler struct {
	Articles *artUC.Service
	Comments *commentUC.Service
}

// ServeHTTP コメント投稿
// POST stores the comment; any other method only redirects to the article.
// Blank comments redirect the same way as stored ones. A rate-limited comment
// is answered with 429 so the post is not mistaken for a stored one.
func (h CommentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	viewer := auth.Viewer(r.Context())

	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.HTML(w, r, http.StatusNotFound, templates.NotFoundPage(viewer))
		return
	}
	detail := templates.ArticlePath(id)

	if r.Method != http.MethodPost {
		if _, err := h.Articles.Get(r.Context(), id); err != nil {
			if errors.Is(err, artUC.ErrArticleNotFound) {
				respond.HTML(w, r, http.StatusNotFound, templates.NotFoundPage(viewer))
				return
			}
			serverError(w, r, "get article failed", err)
			return
		}
		http.Redirect(w, r, detail, http.StatusFound)
		return
	}

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginURL(r.URL.RequestURI()), http.StatusFound)
		return
	}

	_, err = h.Comments.Create(r.Context(), commentUC.CreateInput{
		ArticleID: id,
		UserID:    identity.UserID,
		Content:   r.PostFormValue("content"),
	})
	var limited *commentUC.RateLimitError
	switch {
	case err == nil:
		http.Redirect(w, r, detail, http.StatusFound)
	case errors.As(err, &limited):
		retry := strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds())))
		w.Header().Set("Retry-After", retry)
		respond.HTML(w, r, http.StatusTooManyRequests, templates.RateLimitedPage(viewer, id, retry))
	case errors.Is(err, commentUC.ErrArticleNotFound):
		respond.HTML(w, r, http.StatusNotFound, templates.NotFoundPage(viewer))
	default:
		serverError(w, r, "create comment failed", err)
	}
}
