package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

// Коды ошибок PostgreSQL, которые переводятся в доменные ошибки.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// New создает новый экземпляр хранилища PostgreSQL и мигрирует схему.
func New(dsn string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(&domain.User{}, &domain.Category{}, &domain.Tag{}, &domain.Post{}, &domain.Comment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// newGormLogger направляет SQL-лог gorm в zerolog. Запросы пишутся только
// на уровне debug.
func newGormLogger(log zerolog.Logger) logger.Interface {
	level := logger.Warn
	if log.GetLevel() <= zerolog.DebugLevel {
		level = logger.Info
	}
	return logger.New(gormWriter{log: log.With().Str("component", "gorm").Logger()}, logger.Config{
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Msgf(format, args...)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate переводит ошибки gorm и PostgreSQL в доменные.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", entity, domain.ErrNotFound)
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		// Имя ограничения - только диагностика, не часть контракта.
		return fmt.Errorf("%s already exists (%s): %w", entity, pgErr.ConstraintName, domain.ErrConflict)
	case errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation:
		return fmt.Errorf("%s references a missing record (%s): %w", entity, pgErr.ConstraintName, domain.ErrNotFound)
	}
	return err
}

func paginate(db *gorm.DB, args storage.PaginationArgs) *gorm.DB {
	if args.Limit > 0 {
		db = db.Limit(args.Limit)
	}
	if args.Offset > 0 {
		db = db.Offset(args.Offset)
	}
	return db
}

// ensureExists возвращает ErrNotFound, если записи с таким id нет.
func ensureExists(tx *gorm.DB, model interface{}, id uint, entity string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s with id %d: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user with id %d", id))
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %q", username))
	}
	return &user, nil
}

func (s *Store) GetUsers(ctx context.Context, args storage.PaginationArgs) ([]*domain.User, error) {
	var users []*domain.User
	err := paginate(s.db.WithContext(ctx).Order("id ASC"), args).Find(&users).Error
	return users, err
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

func (s *Store) UpdateUser(ctx context.Context, id uint, fn func(*domain.User) error) (*domain.User, error) {
	var user domain.User
	// Используем транзакцию для атомарности операции чтения-записи
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error; err != nil {
			return translate(err, fmt.Sprintf("user with id %d", id))
		}
		if err := fn(&user); err != nil {
			return err
		}
		user.ID = id
		return translate(tx.Omit(clause.Associations).Save(&user).Error, "user")
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// === Post Methods ===

// withPostRelations подгружает всё, что нужно для представления поста.
func withPostRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	tags := post.Tags
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &domain.User{}, post.AuthorID, "user"); err != nil {
			return err
		}
		if err := ensureExists(tx, &domain.Category{}, post.CategoryID, "category"); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return translate(err, "post")
		}
		if len(tags) == 0 {
			return nil
		}
		return translate(tx.Model(post).Association("Tags").Replace(tags), "post tags")
	})
	if err != nil {
		return nil, err
	}
	// GORM автоматически заполнит ID и CreatedAt после создания
	return s.GetPostByID(ctx, post.ID)
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*domain.Post, error) {
	var post domain.Post
	if err := withPostRelations(s.db.WithContext(ctx)).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("post with id %d", id))
	}
	return &post, nil
}

func postQuery(db *gorm.DB, f storage.PostFilter) *gorm.DB {
	q := db.Model(&domain.Post{})
	if f.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.CategoryID != 0 {
		q = q.Where("posts.category_id = ?", f.CategoryID)
	}
	if f.TagID != 0 {
		q = q.Where("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND pt.tag_id = ?)", f.TagID)
	}
	if f.Status != "" {
		q = q.Where("posts.status = ?", f.Status)
	}
	if f.ViewerID != 0 {
		q = q.Where("(posts.status = ? OR posts.author_id = ?)", domain.PostPublished, f.ViewerID)
	}
	return q
}

func (s *Store) GetPosts(ctx context.Context, filter storage.PostFilter, args storage.PaginationArgs) ([]*domain.Post, error) {
	var posts []*domain.Post
	q := postQuery(s.db.WithContext(ctx), filter).Order("posts.created_at DESC, posts.id DESC")
	err := withPostRelations(paginate(q, args)).Find(&posts).Error
	return posts, err
}

func (s *Store) CountPosts(ctx context.Context, filter storage.PostFilter) (int64, error) {
	var n int64
	err := postQuery(s.db.WithContext(ctx), filter).Count(&n).Error
	return n, err
}

func (s *Store) UpdatePost(ctx context.Context, id uint, fn func(*domain.Post) error) (*domain.Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := withPostRelations(tx).First(&post, "id = ?", id).Error; err != nil {
			return translate(err, fmt.Sprintf("post with id %d", id))
		}
		authorID, createdAt := post.AuthorID, post.CreatedAt
		if err := fn(&post); err != nil {
			return err
		}
		if err := ensureExists(tx, &domain.Category{}, post.CategoryID, "category"); err != nil {
			return err
		}
		post.ID, post.AuthorID, post.CreatedAt = id, authorID, createdAt
		if err := tx.Omit(clause.Associations).Save(&post).Error; err != nil {
			return translate(err, "post")
		}
		tags := tx.Model(&post).Association("Tags")
		if len(post.Tags) == 0 {
			return tags.Clear()
		}
		return translate(tags.Replace(post.Tags), "post tags")
	})
	if err != nil {
		return nil, err
	}
	return s.GetPostByID(ctx, id)
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	// Проверяем существование и статус поста в одной транзакции
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Select("id", "status").First(&post, "id = ?", comment.PostID).Error; err != nil {
			return translate(err, fmt.Sprintf("post with id %d", comment.PostID))
		}
		if post.Status == domain.PostDeleted {
			return fmt.Errorf("post %d is deleted: %w", post.ID, domain.ErrValidation)
		}
		if err := ensureExists(tx, &domain.User{}, comment.AuthorID, "user"); err != nil {
			return err
		}
		return translate(tx.Omit(clause.Associations).Create(comment).Error, "comment")
	})
	if err != nil {
		return nil, err
	}
	return s.GetCommentByID(ctx, comment.ID)
}

func (s *Store) GetCommentByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var comment domain.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("comment with id %d", id))
	}
	return &comment, nil
}

func (s *Store) GetComments(ctx context.Context, filter storage.CommentFilter, args storage.PaginationArgs) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	q := s.db.WithContext(ctx).Preload("Author").Order("created_at ASC, id ASC")
	if filter.PostID != 0 {
		q = q.Where("post_id = ?", filter.PostID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ViewerID != 0 {
		q = q.Where("(status = ? OR author_id = ?)", domain.CommentPublished, filter.ViewerID)
	}
	err := paginate(q, args).Find(&comments).Error
	return comments, err
}

func (s *Store) UpdateComment(ctx context.Context, id uint, fn func(*domain.Comment) error) (*domain.Comment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment domain.Comment
		if err := tx.Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
			return translate(err, fmt.Sprintf("comment with id %d", id))
		}
		postID, authorID, createdAt := comment.PostID, comment.AuthorID, comment.CreatedAt
		if err := fn(&comment); err != nil {
			return err
		}
		comment.ID, comment.PostID, comment.AuthorID, comment.CreatedAt = id, postID, authorID, createdAt
		return translate(tx.Omit(clause.Associations).Save(&comment).Error, "comment")
	})
	if err != nil {
		return nil, err
	}
	return s.GetCommentByID(ctx, id)
}

// === Category Methods ===

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("category %q", category.Name))
	}
	return category, nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("category with id %d", id))
	}
	return &category, nil
}

func (s *Store) GetCategories(ctx context.Context, args storage.PaginationArgs) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := paginate(s.db.WithContext(ctx).Order("name ASC"), args).Find(&categories).Error
	return categories, err
}

func (s *Store) UpdateCategory(ctx context.Context, id uint, fn func(*domain.Category) error) (*domain.Category, error) {
	var category domain.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return translate(err, fmt.Sprintf("category with id %d", id))
		}
		if err := fn(&category); err != nil {
			return err
		}
		category.ID = id
		return translate(tx.Omit(clause.Associations).Save(&category).Error, fmt.Sprintf("category %q", category.Name))
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &domain.Category{}, id, "category"); err != nil {
			return err
		}
		var posts int64
		if err := tx.Model(&domain.Post{}).Where("category_id = ?", id).Count(&posts).Error; err != nil {
			return err
		}
		if posts > 0 {
			return fmt.Errorf("category %d still has posts: %w", id, domain.ErrConflict)
		}
		return tx.Delete(&domain.Category{}, id).Error
	})
}

// === Tag Methods ===

func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(tag).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("tag %q", tag.Name))
	}
	return tag, nil
}

func (s *Store) GetTagByID(ctx context.Context, id uint) (*domain.Tag, error) {
	var tag domain.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("tag with id %d", id))
	}
	return &tag, nil
}

func (s *Store) GetTags(ctx context.Context, args storage.PaginationArgs) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	err := paginate(s.db.WithContext(ctx).Order("name ASC"), args).Find(&tags).Error
	return tags, err
}

func (s *Store) GetTagsByIDs(ctx context.Context, ids []uint) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&tags).Error
	return tags, err
}

func (s *Store) UpdateTag(ctx context.Context, id uint, fn func(*domain.Tag) error) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tag, "id = ?", id).Error; err != nil {
			return translate(err, fmt.Sprintf("tag with id %d", id))
		}
		if err := fn(&tag); err != nil {
			return err
		}
		tag.ID = id
		return translate(tx.Omit(clause.Associations).Save(&tag).Error, fmt.Sprintf("tag %q", tag.Name))
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *Store) DeleteTag(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag := domain.Tag{ID: id}
		if err := ensureExists(tx, &domain.Tag{}, id, "tag"); err != nil {
			return err
		}
		if err := tx.Model(&tag).Association("Posts").Clear(); err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

// === Dataloader Method ===

func (s *Store) CountPostsByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	type row struct {
		AuthorID uint
		Total    int64
	}
	var rows []row
	// Считаем посты всех переданных авторов одним запросом
	err := s.db.WithContext(ctx).
		Model(&domain.Post{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uint]int64, len(authorIDs))
	for _, id := range authorIDs {
		result[id] = 0
	}
	for _, r := range rows {
		result[r.AuthorID] = r.Total
	}
	return result, nil
}
