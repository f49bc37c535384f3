package inmemory

import (
	"context"
	"errors"
	"testing"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *Store
	author   *domain.User
	category *domain.Category
	tag      *domain.Tag
}

// newTestStore создает хранилище с автором, категорией и тегом
func newTestStore(t *testing.T) fixture {
	store := New()
	ctx := context.Background()

	author, err := store.CreateUser(ctx, &domain.User{
		Name: "Ana", Surname: "Diaz", Email: "ana@example.com",
		Username: "ana", PasswordHash: "x",
	})
	require.NoError(t, err)
	category, err := store.CreateCategory(ctx, &domain.Category{Name: "go"})
	require.NoError(t, err)
	tag, err := store.CreateTag(ctx, &domain.Tag{Name: "orm"})
	require.NoError(t, err)

	return fixture{store: store, author: author, category: category, tag: tag}
}

func (f fixture) createPost(t *testing.T, status domain.PostStatus) *domain.Post {
	post, err := f.store.CreatePost(context.Background(), &domain.Post{
		Title: "Test Post", Content: "Content",
		AuthorID: f.author.ID, CategoryID: f.category.ID,
		Status: status, Tags: []*domain.Tag{f.tag},
	})
	require.NoError(t, err)
	return post
}

func TestStore_CreateUserDefaultsAndUniqueness(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, domain.RoleUser, f.author.Role)
	assert.Equal(t, domain.UserActive, f.author.Status)
	assert.False(t, f.author.CreatedAt.IsZero())

	_, err := f.store.CreateUser(ctx, &domain.User{Username: "ana", Email: "other@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.store.CreateUser(ctx, &domain.User{Username: "other", Email: "ana@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	n, err := f.store.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestStore_CreateAndGetPost(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	post := f.createPost(t, "")

	retrieved, err := f.store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, retrieved.Title)
	assert.Equal(t, domain.PostDraft, retrieved.Status)
	require.NotNil(t, retrieved.Author)
	assert.Equal(t, "ana", retrieved.Author.Username)
	require.Len(t, retrieved.Tags, 1)
	assert.Equal(t, "orm", retrieved.Tags[0].Name)

	_, err = f.store.GetPostByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_CreatePost_MissingReferences(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()

	_, err := f.store.CreatePost(ctx, &domain.Post{Title: "t", Content: "c", AuthorID: 42, CategoryID: f.category.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.store.CreatePost(ctx, &domain.Post{Title: "t", Content: "c", AuthorID: f.author.ID, CategoryID: 42})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpdatePost_RollsBackOnError(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	post := f.createPost(t, domain.PostPublished)

	boom := errors.New("boom")
	_, err := f.store.UpdatePost(ctx, post.ID, func(p *domain.Post) error {
		p.Title = "changed"
		p.Delete()
		return boom
	})
	require.ErrorIs(t, err, boom)

	unchanged, err := f.store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Post", unchanged.Title)
	assert.Equal(t, domain.PostPublished, unchanged.Status)
}

func TestStore_UpdatePost_Tags(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	post := f.createPost(t, domain.PostDraft)
	second, err := f.store.CreateTag(ctx, &domain.Tag{Name: "sql"})
	require.NoError(t, err)

	updated, err := f.store.UpdatePost(ctx, post.ID, func(p *domain.Post) error {
		p.AddTags(second, f.tag)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 2)
	assert.True(t, !updated.UpdatedAt.Before(post.UpdatedAt))

	byTag, err := f.store.GetPosts(ctx, storage.PostFilter{TagID: second.ID}, storage.PaginationArgs{})
	require.NoError(t, err)
	assert.Len(t, byTag, 1)

	require.NoError(t, f.store.DeleteTag(ctx, second.ID))
	reloaded, err := f.store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Tags, 1)
}

func TestStore_GetPosts_ViewerFilter(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	f.createPost(t, domain.PostPublished)
	f.createPost(t, domain.PostDraft)

	reader, err := f.store.CreateUser(ctx, &domain.User{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	visible, err := f.store.GetPosts(ctx, storage.PostFilter{ViewerID: reader.ID}, storage.PaginationArgs{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	own, err := f.store.GetPosts(ctx, storage.PostFilter{ViewerID: f.author.ID}, storage.PaginationArgs{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	counts, err := f.store.CountPostsByAuthors(ctx, []uint{f.author.ID, reader.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[f.author.ID])
	assert.EqualValues(t, 0, counts[reader.ID])
}

func TestStore_CreateComment(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	post := f.createPost(t, domain.PostPublished)

	comment, err := f.store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: f.author.ID, Content: "First comment!"})
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)
	assert.Equal(t, domain.CommentDraft, comment.Status)

	reloaded, err := f.store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Comments, 1)

	_, err = f.store.CreateComment(ctx, &domain.Comment{PostID: 999, AuthorID: f.author.ID, Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_CreateComment_DeletedPost(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	post := f.createPost(t, domain.PostDeleted)

	_, err := f.store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: f.author.ID, Content: "This should fail"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_Pagination(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	post := f.createPost(t, domain.PostPublished)

	// Создаем 5 комментариев
	for i := 0; i < 5; i++ {
		_, err := f.store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: f.author.ID, Content: "some comment"})
		require.NoError(t, err)
	}

	firstPage, err := f.store.GetComments(ctx, storage.CommentFilter{PostID: post.ID}, storage.PaginationArgs{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)

	secondPage, err := f.store.GetComments(ctx, storage.CommentFilter{PostID: post.ID}, storage.PaginationArgs{Limit: 3, Offset: 2})
	require.NoError(t, err)
	require.Len(t, secondPage, 3)

	// Убеждаемся, что ID не пересекаются
	assert.NotEqual(t, firstPage[1].ID, secondPage[0].ID)
	assert.Less(t, firstPage[1].ID, secondPage[0].ID)

	empty, err := f.store.GetComments(ctx, storage.CommentFilter{PostID: post.ID}, storage.PaginationArgs{Limit: 3, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_DeleteCategoryInUse(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	f.createPost(t, domain.PostDraft)

	err := f.store.DeleteCategory(ctx, f.category.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	empty, err := f.store.CreateCategory(ctx, &domain.Category{Name: "empty"})
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteCategory(ctx, empty.ID))
	_, err = f.store.GetCategoryByID(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_GetTagsByIDsSkipsUnknown(t *testing.T) {
	f := newTestStore(t)
	tags, err := f.store.GetTagsByIDs(context.Background(), []uint{f.tag.ID, 999, f.tag.ID})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, f.tag.ID, tags[0].ID)
}

func TestStore_UpdateCategoryConflict(t *testing.T) {
	f := newTestStore(t)
	ctx := context.Background()
	other, err := f.store.CreateCategory(ctx, &domain.Category{Name: "sql"})
	require.NoError(t, err)

	_, err = f.store.UpdateCategory(ctx, other.ID, func(c *domain.Category) error {
		c.Name = "go"
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	kept, err := f.store.GetCategoryByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "sql", kept.Name)
}
