// Package httpapi - JSON API блога поверх chi.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/UkralStul/blog-api/internal/dataloader"
	"github.com/UkralStul/blog-api/internal/feed"
	"github.com/UkralStul/blog-api/internal/service"
)

type Handler struct {
	svc      *service.Service
	verifier TokenVerifier
	hub      *feed.Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
	ping     time.Duration
}

func New(svc *service.Service, verifier TokenVerifier, hub *feed.Hub, log zerolog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		verifier: verifier,
		hub:      hub,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ping: 10 * time.Second,
	}
}

// Router собирает все маршруты API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Get("/healthz", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticate(h.verifier))
		r.Use(dataloader.Middleware(h.svc.Storage()))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getProfile)
				r.Get("/public", h.getPublicProfile)
				r.Patch("/", h.editProfile)
				r.Put("/status", h.setUserStatus)
				r.Delete("/", h.deactivateUser)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", h.createPost)
			r.Get("/", h.listPosts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getPost)
				r.Patch("/", h.editPost)
				r.Put("/status", h.setPostStatus)
				r.Delete("/", h.deletePost)
				r.Post("/comments", h.createComment)
				r.Get("/comments", h.listComments)
				r.Get("/comments/live", h.liveComments)
			})
		})

		r.Route("/comments/{id}", func(r chi.Router) {
			r.Get("/", h.getComment)
			r.Patch("/", h.editComment)
			r.Put("/status", h.setCommentStatus)
			r.Delete("/", h.deleteComment)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.createCategory)
			r.Get("/", h.listCategories)
			r.Get("/{id}", h.getCategory)
			r.Patch("/{id}", h.renameCategory)
			r.Delete("/{id}", h.deleteCategory)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Post("/", h.createTag)
			r.Get("/", h.listTags)
			r.Get("/{id}", h.getTag)
			r.Patch("/{id}", h.renameTag)
			r.Delete("/{id}", h.deleteTag)
		})
	})

	return r
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the blog API"})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Storage().Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("storage ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
