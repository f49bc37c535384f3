package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

const maxCommentLen = 2000

type CommentInput struct {
	Content *string
	Status  *string
}

func parseOptionalCommentStatus(status *string) (domain.CommentStatus, error) {
	if status == nil {
		return "", nil
	}
	return domain.ParseCommentStatus(*status)
}

func validateCommentContent(content *string, dst *string) error {
	if err := optional("content", content, dst); err != nil {
		return err
	}
	if utf8.RuneCountInString(*dst) > maxCommentLen {
		return fmt.Errorf("comment content is too long: %w", domain.ErrValidation)
	}
	return nil
}

func (s *Service) CreateComment(ctx context.Context, actorID, postID uint, in CommentInput) (*domain.Comment, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	comment := &domain.Comment{PostID: postID, AuthorID: actor.ID, Status: domain.CommentDraft}
	if in.Content == nil {
		return nil, fmt.Errorf("content is required: %w", domain.ErrValidation)
	}
	if err := validateCommentContent(in.Content, &comment.Content); err != nil {
		return nil, err
	}
	st, err := parseOptionalCommentStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if st != "" {
		comment.SetStatus(st)
	}

	// Ошибки (пост не найден, пост удален) обрабатываются в слое Storage
	created, err := s.store.CreateComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("comment_id", created.ID).Uint("post_id", postID).Uint("actor_id", actor.ID).Msg("comment created")
	if created.Status == domain.CommentPublished {
		s.notify(created)
	}
	return created, nil
}

func (s *Service) GetComment(ctx context.Context, actorID, commentID uint) (*domain.Comment, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !domain.CanViewComment(actor, c) {
		return nil, fmt.Errorf("comment %d is a draft: %w", c.ID, domain.ErrForbidden)
	}
	return c, nil
}

// ListComments отдает опубликованные комментарии видимого поста и черновики
// самого пользователя. Админ видит все.
func (s *Service) ListComments(ctx context.Context, actorID, postID uint, args storage.PaginationArgs) ([]*domain.Comment, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !domain.CanViewPost(actor, post) {
		return nil, fmt.Errorf("post %d is %s: %w", post.ID, post.Status, domain.ErrForbidden)
	}
	filter := storage.CommentFilter{PostID: post.ID}
	if !actor.IsAdmin() {
		filter.ViewerID = actor.ID
	}
	return s.store.GetComments(ctx, filter, args)
}

func (s *Service) EditComment(ctx context.Context, actorID, commentID uint, in CommentInput) (*domain.Comment, error) {
	st, err := parseOptionalCommentStatus(in.Status)
	if err != nil {
		return nil, err
	}
	return s.changeComment(ctx, actorID, commentID, func(c *domain.Comment) error {
		if in.Content != nil {
			if err := validateCommentContent(in.Content, &c.Content); err != nil {
				return err
			}
		}
		if st != "" {
			c.SetStatus(st)
		}
		return nil
	})
}

func (s *Service) SetCommentStatus(ctx context.Context, actorID, commentID uint, status string) (*domain.Comment, error) {
	st, err := domain.ParseCommentStatus(status)
	if err != nil {
		return nil, err
	}
	return s.changeComment(ctx, actorID, commentID, func(c *domain.Comment) error {
		c.SetStatus(st)
		return nil
	})
}

// DeleteComment снимает комментарий с публикации: у комментариев нет
// статуса deleted.
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID uint) (*domain.Comment, error) {
	return s.changeComment(ctx, actorID, commentID, func(c *domain.Comment) error {
		c.Draft()
		return nil
	})
}

func (s *Service) changeComment(ctx context.Context, actorID, commentID uint, apply func(*domain.Comment) error) (*domain.Comment, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	var wasPublished bool
	updated, err := s.store.UpdateComment(ctx, commentID, func(c *domain.Comment) error {
		if err := domain.Authorize(actor, c.AuthorID); err != nil {
			return err
		}
		wasPublished = c.Status == domain.CommentPublished
		return apply(c)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("comment_id", commentID).Uint("actor_id", actor.ID).Str("status", string(updated.Status)).Msg("comment updated")
	if !wasPublished && updated.Status == domain.CommentPublished {
		s.notify(updated)
	}
	return updated, nil
}

func (s *Service) notify(c *domain.Comment) {
	if s.comments != nil {
		s.comments.Publish(c)
	}
}
