package admin

import (
	"net/http"

	"blog/internal/handler/http/auth"
	artUC "blog/internal/usecase/article"
	commentUC "blog/internal/usecase/comment"
)

// Register registers the admin endpoints with the given mux.
// Every route requires a staff session or bearer token.
func Register(mux *http.ServeMux, articles *artUC.Service, comments *commentUC.Service) {
	mux.Handle("GET /admin/articles", auth.StaffOnly(ListArticlesHandler{articles}))
	mux.Handle("POST /admin/articles", auth.StaffOnly(CreateArticleHandler{articles}))
	mux.Handle("PUT /admin/articles/{id}", auth.StaffOnly(UpdateArticleHandler{articles}))
	mux.Handle("DELETE /admin/articles/{id}", auth.StaffOnly(DeleteArticleHandler{articles}))
	mux.Handle("GET /admin/comments", auth.StaffOnly(ListCommentsHandler{comments}))
}
