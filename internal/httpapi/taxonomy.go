package httpapi

import (
	"net/http"

	"github.com/UkralStul/blog-api/internal/domain"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), actorID(r.Context()), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.NewCategoryView(c, 0))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	args, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.svc.ListCategories(r.Context(), args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) renameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req nameRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.svc.RenameCategory(r.Context(), actorID(r.Context()), id, req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), actorID(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createTag(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.svc.CreateTag(r.Context(), actorID(r.Context()), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.NewTagView(t))
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	args, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := h.svc.ListTags(r.Context(), args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]domain.TagView, len(tags))
	for i, t := range tags {
		views[i] = domain.NewTagView(t)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.svc.GetTag(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewTagView(t))
}

func (h *Handler) renameTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req nameRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.svc.RenameTag(r.Context(), actorID(r.Context()), id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewTagView(t))
}

func (h *Handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteTag(r.Context(), actorID(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
