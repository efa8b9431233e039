package admin

import (
	"net/http"

	"blog/internal/handler/http/respond"
	commentUC "blog/internal/usecase/comment"
)

type ListCommentsHandler struct{ Svc *commentUC.Service }

// ServeHTTP コメント一覧取得（新しい順）
func (h ListCommentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, r, errorCode(err), err)
		return
	}

	out := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentDTO(c))
	}
	respond.JSON(w, http.StatusOK, out)
}
