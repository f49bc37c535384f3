// Package service реализует операции блога. Каждая операция - одна единица
// работы: определить пользователя, загрузить сущность, проверить права,
// изменить и сохранить.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

// PasswordHasher хеширует и сверяет пароли. Compare возвращает
// domain.ErrCredentials при несовпадении.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer выпускает bearer-токен для пользователя.
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// CommentPublisher получает комментарии в момент публикации.
type CommentPublisher interface {
	Publish(c *domain.Comment)
}

type Service struct {
	store     storage.Storage
	passwords PasswordHasher
	tokens    TokenIssuer
	comments  CommentPublisher
	log       zerolog.Logger
}

// Option настраивает Service.
type Option func(*Service)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithCommentPublisher(p CommentPublisher) Option {
	return func(s *Service) { s.comments = p }
}

func New(store storage.Storage, passwords PasswordHasher, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:     store,
		passwords: passwords,
		tokens:    tokens,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Storage отдает хранилище для слоя HTTP (лоадеры, healthcheck).
func (s *Service) Storage() storage.Storage { return s.store }

// Actor загружает пользователя из проверенного токена. Пропавший или
// неактивный пользователь считается неаутентифицированным.
func (s *Service) Actor(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user %d no longer exists: %w", id, domain.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if u.Status != domain.UserActive {
		return nil, fmt.Errorf("user %d is %s: %w", id, u.Status, domain.ErrUnauthenticated)
	}
	return u, nil
}

func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%s is required: %w", field, domain.ErrValidation)
	}
	return v, nil
}

// optional проверяет поле частичного обновления: nil - не менять, пустая
// строка - ошибка.
func optional(field string, value *string, dst *string) error {
	if value == nil {
		return nil
	}
	v, err := required(field, *value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
