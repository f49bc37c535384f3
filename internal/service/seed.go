package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/blog-api/internal/domain"
)

// EnsureAdmin создает администратора, если пользователя с таким логином еще
// нет. Регистрация всегда дает роль user, поэтому первый админ появляется
// только так.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, error) {
	existing, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	admin, err := s.store.CreateUser(ctx, &domain.User{
		Name:         "Admin",
		Surname:      "Admin",
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.UserActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin %q: %w", username, err)
	}
	s.log.Info().Uint("user_id", admin.ID).Str("username", username).Msg("admin account created")
	return admin, nil
}
