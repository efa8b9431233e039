package article

import (
	"net/http"

	"blog/internal/handler/http/auth"
	"blog/internal/handler/http/respond"
	artUC "blog/internal/usecase/article"
	"blog/web/templates"
)

type HomeHandler struct{ Svc *artUC.Service }

// ServeHTTP トップページ（最新記事5件）
func (h HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	viewer := auth.Viewer(r.Context())

	recent, err := h.Svc.ListRecent(r.Context(), artUC.DefaultRecentLimit)
	if err != nil {
		serverError(w, r, "list recent articles failed", err)
		return
	}

	view := templates.HomeView{
		Viewer:   viewer,
		Articles: make([]templates.ArticleSummary, 0, len(recent)),
	}
	for _, a := range recent {
		view.Articles = append(view.Articles, templates.ArticleSummary{
			ID:          a.Article.ID,
			Title:       a.Article.Title,
			PublishDate: a.Article.PublishDate.Format(templates.DateLayout),
			AuthorName:  a.AuthorName,
		})
	}
	respond.HTML(w, r, http.StatusOK, templates.HomePage(view))
}

// NotFoundHandler renders the 404 page for unmatched routes.
type NotFoundHandler struct{}

func (NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.HTML(w, r, http.StatusNotFound, templates.NotFoundPage(auth.Viewer(r.Context())))
}
