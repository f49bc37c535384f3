package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/service"
)

type commentRequest struct {
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

func (req commentRequest) input() service.CommentInput {
	return service.CommentInput{Content: req.Content, Status: req.Status}
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.CreateComment(r.Context(), actorID(r.Context()), postID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.NewCommentView(c))
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	args, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := h.svc.ListComments(r.Context(), actorID(r.Context()), postID, args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]domain.CommentView, len(comments))
	for i, c := range comments {
		views[i] = domain.NewCommentView(c)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.GetComment(r.Context(), actorID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewCommentView(c))
}

func (h *Handler) editComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.EditComment(r.Context(), actorID(r.Context()), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewCommentView(c))
}

func (h *Handler) setCommentStatus(w http.ResponseWriter, r *http.Request) {
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
	c, err := h.svc.SetCommentStatus(r.Context(), actorID(r.Context()), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewCommentView(c))
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.DeleteComment(r.Context(), actorID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewCommentView(c))
}

// liveComments держит WebSocket и пересылает комментарии поста в момент
// публикации. Доступ проверяется один раз при подключении.
func (h *Handler) liveComments(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.svc.GetPost(r.Context(), actorID(r.Context()), postID); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.log.Debug().Err(err).Uint("post_id", postID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	comments, cancel := h.hub.Subscribe(postID)
	defer cancel()

	// Читаем из соединения только чтобы заметить закрытие клиентом.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case c, ok := <-comments:
			if !ok {
				return
			}
			if err := conn.WriteJSON(domain.NewCommentView(c)); err != nil {
				h.log.Debug().Err(err).Uint("post_id", postID).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
