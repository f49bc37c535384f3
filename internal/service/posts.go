package service

import (
	"context"
	"fmt"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

// PostInput - поля поста. Для создания обязательны Title, Content и
// CategoryID; для редактирования nil означает "не менять". TagIDs
// добавляются к существующим тегам.
type PostInput struct {
	Title      *string
	Content    *string
	CategoryID *uint
	TagIDs     []uint
	Status     *string
}

// PostQuery - фильтры списка постов.
type PostQuery struct {
	AuthorID   uint
	CategoryID uint
	TagID      uint
	Status     string
}

// resolveTags загружает теги по id. Несуществующие id молча отбрасываются.
func (s *Service) resolveTags(ctx context.Context, ids []uint) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tags, err := s.store.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) < len(ids) {
		s.log.Debug().Int("requested", len(ids)).Int("resolved", len(tags)).Msg("unknown tag ids dropped")
	}
	return tags, nil
}

func parseOptionalPostStatus(status *string) (domain.PostStatus, error) {
	if status == nil {
		return "", nil
	}
	return domain.ParsePostStatus(*status)
}

func (s *Service) CreatePost(ctx context.Context, actorID uint, in PostInput) (*domain.Post, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{AuthorID: actor.ID, Status: domain.PostDraft}
	if in.Title == nil || in.Content == nil || in.CategoryID == nil {
		return nil, fmt.Errorf("title, content and category_id are required: %w", domain.ErrValidation)
	}
	if err := optional("title", in.Title, &post.Title); err != nil {
		return nil, err
	}
	if err := optional("content", in.Content, &post.Content); err != nil {
		return nil, err
	}
	post.CategoryID = *in.CategoryID
	st, err := parseOptionalPostStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if st != "" {
		post.SetStatus(st)
	}

	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}
	post.AddTags(tags...)

	created, err := s.store.CreatePost(ctx, post)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("post_id", created.ID).Uint("actor_id", actor.ID).Msg("post created")
	return created, nil
}

// GetPost отдает опубликованный пост любому пользователю, остальные - только
// автору и админам.
func (s *Service) GetPost(ctx context.Context, actorID, postID uint) (*domain.Post, error) {
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
	return post, nil
}

func (s *Service) ListPosts(ctx context.Context, actorID uint, q PostQuery, args storage.PaginationArgs) ([]*domain.Post, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	filter := storage.PostFilter{AuthorID: q.AuthorID, CategoryID: q.CategoryID, TagID: q.TagID}
	if q.Status != "" {
		if filter.Status, err = domain.ParsePostStatus(q.Status); err != nil {
			return nil, err
		}
	}
	if !actor.IsAdmin() {
		filter.ViewerID = actor.ID
	}
	return s.store.GetPosts(ctx, filter, args)
}

func (s *Service) EditPost(ctx context.Context, actorID, postID uint, in PostInput) (*domain.Post, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	st, err := parseOptionalPostStatus(in.Status)
	if err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdatePost(ctx, postID, func(p *domain.Post) error {
		if err := domain.Authorize(actor, p.AuthorID); err != nil {
			return err
		}
		if err := optional("title", in.Title, &p.Title); err != nil {
			return err
		}
		if err := optional("content", in.Content, &p.Content); err != nil {
			return err
		}
		if in.CategoryID != nil {
			p.CategoryID = *in.CategoryID
		}
		if st != "" {
			p.SetStatus(st)
		}
		p.AddTags(tags...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("post_id", postID).Uint("actor_id", actor.ID).Msg("post updated")
	return updated, nil
}

// SetPostStatus переводит пост в любой статус из любого.
func (s *Service) SetPostStatus(ctx context.Context, actorID, postID uint, status string) (*domain.Post, error) {
	st, err := domain.ParsePostStatus(status)
	if err != nil {
		return nil, err
	}
	return s.changePost(ctx, actorID, postID, func(p *domain.Post) { p.SetStatus(st) })
}

// DeletePost - мягкое удаление: статус deleted.
func (s *Service) DeletePost(ctx context.Context, actorID, postID uint) (*domain.Post, error) {
	return s.changePost(ctx, actorID, postID, (*domain.Post).Delete)
}

func (s *Service) changePost(ctx context.Context, actorID, postID uint, apply func(*domain.Post)) (*domain.Post, error) {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdatePost(ctx, postID, func(p *domain.Post) error {
		if err := domain.Authorize(actor, p.AuthorID); err != nil {
			return err
		}
		apply(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("post_id", postID).Uint("actor_id", actor.ID).Str("status", string(updated.Status)).Msg("post status changed")
	return updated, nil
}
