package domain

import (
	"fmt"
	"strings"
)

// Role - уровень прав пользователя.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserStatus - состояние аккаунта.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserBlocked  UserStatus = "blocked"
)

// PostStatus - состояние поста.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostDeleted   PostStatus = "deleted"
)

// CommentStatus - состояние комментария. Статуса deleted у комментариев нет.
type CommentStatus string

const (
	CommentDraft     CommentStatus = "draft"
	CommentPublished CommentStatus = "published"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(normalize(s)); r {
	case RoleAdmin, RoleUser:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q: %w", s, ErrValidation)
}

func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(normalize(s)); st {
	case UserActive, UserInactive, UserBlocked:
		return st, nil
	}
	return "", fmt.Errorf("unknown user status %q: %w", s, ErrValidation)
}

func ParsePostStatus(s string) (PostStatus, error) {
	switch st := PostStatus(normalize(s)); st {
	case PostDraft, PostPublished, PostDeleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown post status %q: %w", s, ErrValidation)
}

func ParseCommentStatus(s string) (CommentStatus, error) {
	switch st := CommentStatus(normalize(s)); st {
	case CommentDraft, CommentPublished:
		return st, nil
	}
	return "", fmt.Errorf("unknown comment status %q: %w", s, ErrValidation)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
