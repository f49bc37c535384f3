package storage

import (
	"context"

	"github.com/UkralStul/blog-api/internal/domain"
)

// PaginationArgs - аргументы для пагинации.
type PaginationArgs struct {
	Limit  int
	Offset int
}

// PostFilter сужает выборку постов. Нулевые значения ничего не ограничивают.
type PostFilter struct {
	AuthorID   uint
	CategoryID uint
	TagID      uint
	Status     domain.PostStatus
	// ViewerID оставляет только опубликованные посты и посты самого зрителя.
	ViewerID uint
}

// CommentFilter сужает выборку комментариев.
type CommentFilter struct {
	PostID   uint
	Status   domain.CommentStatus
	ViewerID uint
}

// Storage определяет контракт для хранилищ.
//
// Методы Update* загружают запись, вызывают fn и сохраняют результат в одной
// транзакции. Если fn вернула ошибку, ничего не записывается, а ошибка
// возвращается как есть. Ошибки хранилища оборачивают domain.ErrNotFound и
// domain.ErrConflict.
type Storage interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUsers(ctx context.Context, args PaginationArgs) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUser(ctx context.Context, id uint, fn func(*domain.User) error) (*domain.User, error)

	// CreatePost проверяет автора и категорию и сохраняет пост вместе с тегами.
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// GetPostByID возвращает пост с загруженными Author, Category, Tags и Comments.
	GetPostByID(ctx context.Context, id uint) (*domain.Post, error)
	GetPosts(ctx context.Context, filter PostFilter, args PaginationArgs) ([]*domain.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	// UpdatePost сохраняет поля поста и заменяет набор тегов на post.Tags.
	UpdatePost(ctx context.Context, id uint, fn func(*domain.Post) error) (*domain.Post, error)

	// CreateComment возвращает ErrNotFound, если поста нет, и ErrValidation,
	// если пост удалён.
	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetCommentByID(ctx context.Context, id uint) (*domain.Comment, error)
	GetComments(ctx context.Context, filter CommentFilter, args PaginationArgs) ([]*domain.Comment, error)
	UpdateComment(ctx context.Context, id uint, fn func(*domain.Comment) error) (*domain.Comment, error)

	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*domain.Category, error)
	GetCategories(ctx context.Context, args PaginationArgs) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, id uint, fn func(*domain.Category) error) (*domain.Category, error)
	// DeleteCategory возвращает ErrConflict, пока на категорию ссылаются посты.
	DeleteCategory(ctx context.Context, id uint) error

	CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
	GetTagByID(ctx context.Context, id uint) (*domain.Tag, error)
	GetTags(ctx context.Context, args PaginationArgs) ([]*domain.Tag, error)
	// GetTagsByIDs возвращает существующие теги, неизвестные id пропускаются.
	GetTagsByIDs(ctx context.Context, ids []uint) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, id uint, fn func(*domain.Tag) error) (*domain.Tag, error)
	// DeleteTag удаляет тег вместе с его связями с постами.
	DeleteTag(ctx context.Context, id uint) error

	// Методы для Dataloader'ов
	CountPostsByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}
