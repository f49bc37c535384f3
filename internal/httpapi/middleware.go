package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/UkralStul/blog-api/internal/domain"
)

// TokenVerifier проверяет bearer-токен и возвращает id пользователя.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

type ctxKey struct{}

func withActor(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// actorID возвращает id пользователя из проверенного токена.
func actorID(ctx context.Context) uint {
	id, _ := ctx.Value(ctxKey{}).(uint)
	return id
}

// bearerToken берет токен из заголовка Authorization. Браузерный WebSocket
// не умеет ставить заголовки, поэтому допускается и ?access_token=.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

func authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, r, fmt.Errorf("missing bearer token: %w", domain.ErrUnauthenticated))
				return
			}
			id, err := verifier.Verify(token)
			if err != nil {
				writeError(w, r, err)
				return
			}
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Uint("actor_id", id)
			})
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), id)))
		})
	}
}

// requestLogger пишет по строке на запрос через zerolog вместо
// middleware.Logger.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		logged := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		})(next)

		return hlog.NewHandler(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str("request_id", reqID)
				})
			}
			logged.ServeHTTP(w, r)
		}))
	}
}
