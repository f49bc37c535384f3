package httpapi

import (
	"net/http"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/service"
)

type postRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CategoryID *uint   `json:"category_id"`
	TagIDs     []uint  `json:"tag_ids"`
	Status     *string `json:"status"`
}

func (req postRequest) input() service.PostInput {
	return service.PostInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		TagIDs:     req.TagIDs,
		Status:     req.Status,
	}
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.CreatePost(r.Context(), actorID(r.Context()), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	// CreatePost не загружает связи, перечитываем пост целиком
	h.writePost(w, r, http.StatusCreated, p.ID)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writePost(w, r, http.StatusOK, id)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	args, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := service.PostQuery{Status: r.URL.Query().Get("status")}
	if q.AuthorID, err = queryID(r, "author_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if q.CategoryID, err = queryID(r, "category_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if q.TagID, err = queryID(r, "tag_id"); err != nil {
		writeError(w, r, err)
		return
	}

	posts, err := h.svc.ListPosts(r.Context(), actorID(r.Context()), q, args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]domain.PostView, len(posts))
	for i, p := range posts {
		views[i] = domain.NewPostView(p)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) editPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req postRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.EditPost(r.Context(), actorID(r.Context()), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewPostView(p))
}

func (h *Handler) setPostStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.SetPostStatus(r.Context(), actorID(r.Context()), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewPostView(p))
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.DeletePost(r.Context(), actorID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewPostView(p))
}

func (h *Handler) writePost(w http.ResponseWriter, r *http.Request, status int, id uint) {
	p, err := h.svc.GetPost(r.Context(), actorID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, domain.NewPostView(p))
}
