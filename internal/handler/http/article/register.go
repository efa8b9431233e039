package article

import (
	"net/http"

	"blog/internal/handler/http/auth"
	artUC "blog/internal/usecase/article"
	commentUC "blog/internal/usecase/comment"
)

// Register registers the public blog pages with the given mux.
// The comment route requires login; anonymous visitors are redirected
// to the login page with next set to the comment URL.
func Register(mux *http.ServeMux, articles *artUC.Service, comments *commentUC.Service) {
	mux.Handle("GET /{$}", HomeHandler{articles})
	mux.Handle("GET /article/{id}/{$}", DetailHandler{Articles: articles, Comments: comments})
	mux.Handle("/article/{id}/comment/{$}", auth.LoginRequired(CommentHandler{Articles: articles, Comments: comments}))
	mux.Handle("/", NotFoundHandler{})
}
