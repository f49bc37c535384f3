package service

import (
	"context"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

// Категории и теги создает любой пользователь, меняет и удаляет только админ.

func (s *Service) CreateCategory(ctx context.Context, actorID uint, name string) (*domain.Category, error) {
	if _, err := s.Actor(ctx, actorID); err != nil {
		return nil, err
	}
	n, err := required("name", name)
	if err != nil {
		return nil, err
	}
	return s.store.CreateCategory(ctx, &domain.Category{Name: n})
}

// GetCategory возвращает категорию и число ее постов на момент вызова.
func (s *Service) GetCategory(ctx context.Context, id uint) (domain.CategoryView, error) {
	c, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return domain.CategoryView{}, err
	}
	n, err := s.store.CountPosts(ctx, storage.PostFilter{CategoryID: c.ID})
	if err != nil {
		return domain.CategoryView{}, err
	}
	return domain.NewCategoryView(c, n), nil
}

func (s *Service) ListCategories(ctx context.Context, args storage.PaginationArgs) ([]domain.CategoryView, error) {
	categories, err := s.store.GetCategories(ctx, args)
	if err != nil {
		return nil, err
	}
	views := make([]domain.CategoryView, 0, len(categories))
	for _, c := range categories {
		n, err := s.store.CountPosts(ctx, storage.PostFilter{CategoryID: c.ID})
		if err != nil {
			return nil, err
		}
		views = append(views, domain.NewCategoryView(c, n))
	}
	return views, nil
}

func (s *Service) RenameCategory(ctx context.Context, actorID, id uint, name string) (*domain.Category, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	n, err := required("name", name)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateCategory(ctx, id, func(c *domain.Category) error {
		c.Name = n
		return nil
	})
}

func (s *Service) DeleteCategory(ctx context.Context, actorID, id uint) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("category_id", id).Uint("actor_id", actorID).Msg("category deleted")
	return nil
}

func (s *Service) CreateTag(ctx context.Context, actorID uint, name string) (*domain.Tag, error) {
	if _, err := s.Actor(ctx, actorID); err != nil {
		return nil, err
	}
	n, err := required("name", name)
	if err != nil {
		return nil, err
	}
	return s.store.CreateTag(ctx, &domain.Tag{Name: n})
}

func (s *Service) GetTag(ctx context.Context, id uint) (*domain.Tag, error) {
	return s.store.GetTagByID(ctx, id)
}

func (s *Service) ListTags(ctx context.Context, args storage.PaginationArgs) ([]*domain.Tag, error) {
	return s.store.GetTags(ctx, args)
}

func (s *Service) RenameTag(ctx context.Context, actorID, id uint, name string) (*domain.Tag, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	n, err := required("name", name)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateTag(ctx, id, func(t *domain.Tag) error {
		t.Name = n
		return nil
	})
}

func (s *Service) DeleteTag(ctx context.Context, actorID, id uint) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("tag_id", id).Uint("actor_id", actorID).Msg("tag deleted")
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, actorID uint) error {
	actor, err := s.Actor(ctx, actorID)
	if err != nil {
		return err
	}
	return domain.RequireAdmin(actor)
}
