package httpapi

import (
	"net/http"

	"github.com/UkralStul/blog-api/internal/dataloader"
	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

type passwordRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

type editProfileRequest struct {
	Name     *string          `json:"name"`
	Surname  *string          `json:"surname"`
	Email    *string          `json:"email"`
	Username *string          `json:"username"`
	Password *passwordRequest `json:"password"`
	Role     *string          `json:"role"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Register(r.Context(), service.RegisterInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.NewUserPrivateView(u, 0))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer"})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.GetProfile(r.Context(), actorID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) getPublicProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.GetPublicProfile(r.Context(), actorID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// listUsers отдает публичные профили; счетчики постов собираются одним
// батчем через лоадер запроса.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	args, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.svc.ListUsers(r.Context(), actorID(r.Context()), args)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	counts, err := dataloader.For(r.Context(), h.svc.Storage()).PostCounts(r.Context(), ids)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]domain.UserPublicView, len(users))
	for i, u := range users {
		views[i] = domain.NewUserPublicView(u, counts[i])
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) editProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req editProfileRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in := service.EditProfileInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Username: req.Username,
		Role:     req.Role,
	}
	if req.Password != nil {
		in.Password = &service.PasswordChange{Current: req.Password.Current, New: req.Password.New}
	}

	u, err := h.svc.EditProfile(r.Context(), actorID(r.Context()), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeUser(w, r, u)
}

func (h *Handler) setUserStatus(w http.ResponseWriter, r *http.Request) {
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
	u, err := h.svc.SetUserStatus(r.Context(), actorID(r.Context()), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeUser(w, r, u)
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.DeactivateUser(r.Context(), actorID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeUser(w, r, u)
}

// writeUser отдает профиль после изменения. Изменять профиль может только
// владелец или админ, так что представление всегда приватное.
func (h *Handler) writeUser(w http.ResponseWriter, r *http.Request, u *domain.User) {
	counts, err := dataloader.For(r.Context(), h.svc.Storage()).PostCounts(r.Context(), []uint{u.ID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewUserPrivateView(u, counts[0]))
}
