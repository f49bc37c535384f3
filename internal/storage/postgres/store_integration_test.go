//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

// setupStore поднимает PostgreSQL в контейнере и возвращает мигрированное хранилище.
func setupStore(t *testing.T) *Store {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("blog"),
		tcpostgres.WithUsername("blog"),
		tcpostgres.WithPassword("blog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := New(dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Integration(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	ana, err := store.CreateUser(ctx, &domain.User{
		Name: "Ana", Surname: "Diaz", Email: "ana@example.com", Username: "ana",
		PasswordHash: "hash", Role: domain.RoleUser, Status: domain.UserActive,
	})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, &domain.User{
		Name: "Ana", Surname: "Other", Email: "other@example.com", Username: "ana",
		PasswordHash: "hash", Role: domain.RoleUser, Status: domain.UserActive,
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	users, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, users)

	category, err := store.CreateCategory(ctx, &domain.Category{Name: "go"})
	require.NoError(t, err)
	tag, err := store.CreateTag(ctx, &domain.Tag{Name: "gorm"})
	require.NoError(t, err)

	tags, err := store.GetTagsByIDs(ctx, []uint{tag.ID, 9999})
	require.NoError(t, err)
	require.Len(t, tags, 1)

	post, err := store.CreatePost(ctx, &domain.Post{
		Title: "Hello", Content: "World", AuthorID: ana.ID, CategoryID: category.ID,
		Status: domain.PostDraft, Tags: tags,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana", post.Author.Username)
	require.Len(t, post.Tags, 1)

	_, err = store.CreateComment(ctx, &domain.Comment{
		PostID: post.ID, AuthorID: ana.ID, Content: "first", Status: domain.CommentPublished,
	})
	require.NoError(t, err)

	updated, err := store.UpdatePost(ctx, post.ID, func(p *domain.Post) error {
		p.Publish()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PostPublished, updated.Status)
	assert.Len(t, updated.Comments, 1)
	assert.Len(t, updated.Tags, 1)

	byTag, err := store.GetPosts(ctx, storage.PostFilter{TagID: tag.ID, ViewerID: ana.ID + 1}, storage.PaginationArgs{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byTag, 1)

	counts, err := store.CountPostsByAuthors(ctx, []uint{ana.ID, ana.ID + 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[ana.ID])
	assert.EqualValues(t, 0, counts[ana.ID+1])

	assert.ErrorIs(t, store.DeleteCategory(ctx, category.ID), domain.ErrConflict)
	require.NoError(t, store.DeleteTag(ctx, tag.ID))

	reloaded, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Tags)

	_, err = store.GetPostByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
