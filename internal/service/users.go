package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

// bcrypt игнорирует всё после 72 байт.
const maxPasswordLen = 72

type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Username string
	Password string
}

// PasswordChange - смена пароля самим владельцем аккаунта.
type PasswordChange struct {
	Current string
	New     string
}

// EditProfileInput - частичное обновление профиля. Password и Role
// взаимоисключающие.
type EditProfileInput struct {
	Name     *string
	Surname  *string
	Email    *string
	Username *string
	Password *PasswordChange
	Role     *string
}

func validatePassword(password string) error {
	switch {
	case password == "":
		return fmt.Errorf("password is required: %w", domain.ErrValidation)
	case len(password) > maxPasswordLen:
		return fmt.Errorf("password is longer than %d bytes: %w", maxPasswordLen, domain.ErrValidation)
	}
	return nil
}

func validateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email %q is invalid: %w", email, domain.ErrValidation)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	u := &domain.User{Role: domain.RoleUser, Status: domain.UserActive}
	var err error
	if u.Name, err = required("name", in.Name); err != nil {
		return nil, err
	}
	if u.Surname, err = required("surname", in.Surname); err != nil {
		return nil, err
	}
	if u.Email, err = required("email", in.Email); err != nil {
		return nil, err
	}
	if err := validateEmail(u.Email); err != nil {
		return nil, err
	}
	if u.Username, err = required("username", in.Username); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if u.PasswordHash, err = s.passwords.Hash(in.Password); err != nil {
		return nil, err
	}

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", u.Username, err)
	}
	s.log.Info().Uint("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Authenticate выдает токен по логину и паролю. Неизвестный логин, неверный
// пароль и неактивный аккаунт дают одну и ту же ошибку.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("login %q: %w", username, domain.ErrCredentials)
	}
	if err != nil {
		return "", err
	}
	if err := s.passwords.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrCredentials) {
			return "", fmt.Errorf("login %q: %w", username, domain.ErrCredentials)
		}
		return "", err
	}
	if u.Status != domain.UserActive {
		s.log.Warn().Uint("user_id", u.ID).Str("status", string(u.Status)).Msg("login refused")
		return "", fmt.Errorf("login %q: account is %s: %w", username, u.Status, domain.ErrCredentials)
	}
	return s.tokens.Issue(u.ID)
}

// GetProfile отдает приватное представление владельцу и админам, остальным -
// публичное. Число постов считается при каждом вызове.
func (s *Service) GetProfile(ctx context.Context, actorID, targetID uint) (domain.UserView, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.store.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountPosts(ctx, storage.PostFilter{AuthorID: target.ID})
	if err != nil {
		return nil, err
	}
	return domain.NewUserView(actor, target, count), nil
}

func (s *Service) GetPublicProfile(ctx context.Context, actorID, targetID uint) (domain.UserPublicView, error) {
	if _, err := s.Actor(ctx, actorID); err != nil {
		return domain.UserPublicView{}, err
	}
	target, err := s.store.GetUserByID(ctx, targetID)
	if err != nil {
		return domain.UserPublicView{}, err
	}
	count, err := s.store.CountPosts(ctx, storage.PostFilter{AuthorID: target.ID})
	if err != nil {
		return domain.UserPublicView{}, err
	}
	return domain.NewUserPublicView(target, count), nil
}

// ListUsers возвращает пользователей; счетчики постов собирает слой HTTP
// через лоадер.
func (s *Service) ListUsers(ctx context.Context, actorID uint, args storage.PaginationArgs) ([]*domain.User, error) {
	if _, err := s.Actor(ctx, actorID); err != nil {
		return nil, err
	}
	return s.store.GetUsers(ctx, args)
}

// EditProfile применяет частичное обновление. Пароль меняет только сам
// пользователь, роль - только админ; запрос не может содержать и то и другое.
func (s *Service) EditProfile(ctx context.Context, actorID, targetID uint, in EditProfileInput) (*domain.User, error) {
	if in.Password != nil && in.Role != nil {
		return nil, fmt.Errorf("password and role cannot be changed in one request: %w", domain.ErrValidation)
	}
	var role domain.Role
	if in.Role != nil {
		r, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}
	if in.Password != nil {
		if err := validatePassword(in.Password.New); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		if err := validateEmail(strings.TrimSpace(*in.Email)); err != nil {
			return nil, err
		}
	}

	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateUser(ctx, targetID, func(u *domain.User) error {
		if err := domain.Authorize(actor, u.ID); err != nil {
			return err
		}
		if in.Role != nil {
			if !domain.CanChangeRole(actor) {
				return fmt.Errorf("only admins change roles: %w", domain.ErrForbidden)
			}
			u.Role = role
		}
		if in.Password != nil {
			if !domain.CanChangePassword(actor, u) {
				return fmt.Errorf("only the account owner changes the password: %w", domain.ErrForbidden)
			}
			if err := s.passwords.Compare(u.PasswordHash, in.Password.Current); err != nil {
				if errors.Is(err, domain.ErrCredentials) {
					return fmt.Errorf("current password is wrong: %w", domain.ErrCredentials)
				}
				return err
			}
			hash, err := s.passwords.Hash(in.Password.New)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}
		if err := optional("name", in.Name, &u.Name); err != nil {
			return err
		}
		if err := optional("surname", in.Surname, &u.Surname); err != nil {
			return err
		}
		if err := optional("email", in.Email, &u.Email); err != nil {
			return err
		}
		return optional("username", in.Username, &u.Username)
	})
	if err != nil {
		return nil, fmt.Errorf("edit profile %d: %w", targetID, err)
	}

	ev := s.log.Info().Uint("user_id", updated.ID).Uint("actor_id", actor.ID)
	if in.Role != nil {
		ev = ev.Str("role", string(updated.Role))
	}
	ev.Bool("password_changed", in.Password != nil).Msg("profile updated")
	return updated, nil
}

// SetUserStatus меняет статус пользователя. Только для админов.
func (s *Service) SetUserStatus(ctx context.Context, actorID, targetID uint, status string) (*domain.User, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireAdmin(actor); err != nil {
		return nil, err
	}
	st, err := domain.ParseUserStatus(status)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateUser(ctx, targetID, func(u *domain.User) error {
		u.SetStatus(st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", targetID).Uint("actor_id", actor.ID).Str("status", string(st)).Msg("user status changed")
	return updated, nil
}

// DeactivateUser - мягкое удаление: статус inactive. Доступно владельцу и админам.
func (s *Service) DeactivateUser(ctx context.Context, actorID, targetID uint) (*domain.User, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateUser(ctx, targetID, func(u *domain.User) error {
		if err := domain.Authorize(actor, u.ID); err != nil {
			return err
		}
		u.Delete()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", targetID).Uint("actor_id", actor.ID).Msg("user deactivated")
	return updated, nil
}
