package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/UkralStul/blog-api/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// errorKinds сопоставляет ошибки домена с HTTP-статусами. Порядок важен:
// первая совпавшая по errors.Is побеждает.
var errorKinds = []struct {
	err    error
	kind   string
	status int
}{
	{domain.ErrNotFound, "not_found", http.StatusNotFound},
	{domain.ErrForbidden, "forbidden", http.StatusForbidden},
	{domain.ErrValidation, "validation", http.StatusBadRequest},
	{domain.ErrConflict, "conflict", http.StatusConflict},
	{domain.ErrCredentials, "credentials", http.StatusUnauthorized},
	{domain.ErrUnauthenticated, "unauthenticated", http.StatusUnauthorized},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError отвечает {"error": {"kind", "message"}}. Неизвестные ошибки
// логируются, клиент получает только "internal".
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			hlog.FromRequest(r).Debug().Err(err).Str("kind", k.kind).Msg("request failed")
			writeJSON(w, k.status, errorBody{Error: errorDetail{Kind: k.kind, Message: err.Error()}})
			return
		}
	}
	hlog.FromRequest(r).Error().Err(err).Msg("internal error")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
		Kind:    "internal",
		Message: "internal server error",
	}})
}
