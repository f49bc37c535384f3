package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/UkralStul/blog-api/internal/service"
)

const demoPassword = "demo-password"

func ptr[T any](v T) *T { return &v }

// fillWithMockData наполняет in-memory хранилище демонстрационными данными:
// два автора, категория, теги, опубликованный пост с комментариями и черновик.
func fillWithMockData(ctx context.Context, svc *service.Service, log zerolog.Logger) error {
	// 1. Авторы
	alice, err := svc.Register(ctx, service.RegisterInput{
		Name: "Alice", Surname: "Smith", Email: "alice@blog.local", Username: "alice", Password: demoPassword,
	})
	if err != nil {
		return fmt.Errorf("create user alice: %w", err)
	}
	bob, err := svc.Register(ctx, service.RegisterInput{
		Name: "Bob", Surname: "Jones", Email: "bob@blog.local", Username: "bob", Password: demoPassword,
	})
	if err != nil {
		return fmt.Errorf("create user bob: %w", err)
	}

	// 2. Категория и теги
	category, err := svc.CreateCategory(ctx, alice.ID, "Go")
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	var tagIDs []uint
	for _, name := range []string{"backend", "postgres"} {
		tag, err := svc.CreateTag(ctx, alice.ID, name)
		if err != nil {
			return fmt.Errorf("create tag %q: %w", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	// 3. Опубликованный пост и комментарии к нему
	post, err := svc.CreatePost(ctx, alice.ID, service.PostInput{
		Title:      ptr("Тестовый пост о Go"),
		Content:    ptr("Это содержимое тестового поста. Здесь мы обсуждаем Go и Postgres."),
		CategoryID: &category.ID,
		TagIDs:     tagIDs,
		Status:     ptr("published"),
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	if _, err := svc.CreateComment(ctx, bob.ID, post.ID, service.CommentInput{
		Content: ptr("Отличный пост! Очень информативно."),
		Status:  ptr("published"),
	}); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	if _, err := svc.CreateComment(ctx, alice.ID, post.ID, service.CommentInput{
		Content: ptr("Спасибо! Рада, что понравилось."),
		Status:  ptr("published"),
	}); err != nil {
		return fmt.Errorf("create reply: %w", err)
	}

	// 4. Черновик, который видят только автор и админы
	draft, err := svc.CreatePost(ctx, bob.ID, service.PostInput{
		Title:      ptr("Черновик"),
		Content:    ptr("Этот пост еще не опубликован."),
		CategoryID: &category.ID,
	})
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}

	log.Info().Uint("post_id", post.ID).Uint("draft_id", draft.ID).Msg("mock data filled")
	return nil
}
