package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
//
// Записи хранятся без связей; связи собираются при чтении, а наружу
// отдаются только копии.
type Store struct {
	mu         sync.RWMutex
	users      map[uint]*domain.User
	posts      map[uint]*domain.Post
	comments   map[uint]*domain.Comment
	categories map[uint]*domain.Category
	tags       map[uint]*domain.Tag
	postTags   map[uint]map[uint]struct{} // map[postID]set[tagID]
	lastID     map[string]uint
	now        func() time.Time
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		users:      make(map[uint]*domain.User),
		posts:      make(map[uint]*domain.Post),
		comments:   make(map[uint]*domain.Comment),
		categories: make(map[uint]*domain.Category),
		tags:       make(map[uint]*domain.Tag),
		postTags:   make(map[uint]map[uint]struct{}),
		lastID:     make(map[string]uint),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) nextID(table string) uint {
	s.lastID[table]++
	return s.lastID[table]
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUserUnique(0, user); err != nil {
		return nil, err
	}
	u := copyUser(user)
	u.ID = s.nextID("users")
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	s.users[u.ID] = u
	return copyUser(u), nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
}

func (s *Store) GetUsers(ctx context.Context, args storage.PaginationArgs) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, copyUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, args), nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) UpdateUser(ctx context.Context, id uint, fn func(*domain.User) error) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
	}
	u := copyUser(rec)
	if err := fn(u); err != nil {
		return nil, err
	}
	u.ID = id
	if err := s.checkUserUnique(id, u); err != nil {
		return nil, err
	}
	s.users[id] = copyUser(u)
	return u, nil
}

func (s *Store) checkUserUnique(selfID uint, user *domain.User) error {
	for _, u := range s.users {
		if u.ID == selfID {
			continue
		}
		if u.Username == user.Username {
			return fmt.Errorf("username %q is already taken: %w", user.Username, domain.ErrConflict)
		}
		if u.Email == user.Email {
			return fmt.Errorf("email %q is already registered: %w", user.Email, domain.ErrConflict)
		}
	}
	return nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.AuthorID]; !ok {
		return nil, fmt.Errorf("user with id %d: %w", post.AuthorID, domain.ErrNotFound)
	}
	if _, ok := s.categories[post.CategoryID]; !ok {
		return nil, fmt.Errorf("category with id %d: %w", post.CategoryID, domain.ErrNotFound)
	}

	p := stripPost(post)
	p.ID = s.nextID("posts")
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	if p.Status == "" {
		p.Status = domain.PostDraft
	}
	s.posts[p.ID] = p
	s.setPostTags(p.ID, post.Tags)
	return s.loadPost(p), nil
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with id %d: %w", id, domain.ErrNotFound)
	}
	return s.loadPost(p), nil
}

func (s *Store) GetPosts(ctx context.Context, filter storage.PostFilter, args storage.PaginationArgs) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Post, 0)
	for _, p := range s.posts {
		if s.matchPost(p, filter) {
			matched = append(matched, p)
		}
	}
	// Новые посты первыми
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := paginate(matched, args)
	result := make([]*domain.Post, len(page))
	for i, p := range page {
		result[i] = s.loadPost(p)
	}
	return result, nil
}

func (s *Store) CountPosts(ctx context.Context, filter storage.PostFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.posts {
		if s.matchPost(p, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdatePost(ctx context.Context, id uint, fn func(*domain.Post) error) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with id %d: %w", id, domain.ErrNotFound)
	}
	loaded := s.loadPost(rec)
	if err := fn(loaded); err != nil {
		return nil, err
	}
	if _, ok := s.categories[loaded.CategoryID]; !ok {
		return nil, fmt.Errorf("category with id %d: %w", loaded.CategoryID, domain.ErrNotFound)
	}

	p := stripPost(loaded)
	p.ID = id
	p.AuthorID = rec.AuthorID
	p.CreatedAt = rec.CreatedAt
	p.UpdatedAt = s.now()
	s.posts[id] = p
	s.setPostTags(id, loaded.Tags)
	return s.loadPost(p), nil
}

func (s *Store) matchPost(p *domain.Post, f storage.PostFilter) bool {
	if f.AuthorID != 0 && p.AuthorID != f.AuthorID {
		return false
	}
	if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
		return false
	}
	if f.TagID != 0 {
		if _, ok := s.postTags[p.ID][f.TagID]; !ok {
			return false
		}
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.ViewerID != 0 && p.Status != domain.PostPublished && p.AuthorID != f.ViewerID {
		return false
	}
	return true
}

// setPostTags сохраняет только существующие теги.
func (s *Store) setPostTags(postID uint, tags []*domain.Tag) {
	set := make(map[uint]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := s.tags[t.ID]; ok {
			set[t.ID] = struct{}{}
		}
	}
	s.postTags[postID] = set
}

// loadPost собирает копию поста со всеми связями.
func (s *Store) loadPost(rec *domain.Post) *domain.Post {
	p := stripPost(rec)
	if u, ok := s.users[p.AuthorID]; ok {
		p.Author = copyUser(u)
	}
	if c, ok := s.categories[p.CategoryID]; ok {
		p.Category = copyCategory(c)
	}

	p.Tags = make([]*domain.Tag, 0, len(s.postTags[p.ID]))
	for tagID := range s.postTags[p.ID] {
		if t, ok := s.tags[tagID]; ok {
			p.Tags = append(p.Tags, copyTag(t))
		}
	}
	sort.Slice(p.Tags, func(i, j int) bool { return p.Tags[i].ID < p.Tags[j].ID })

	p.Comments = make([]*domain.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == p.ID {
			p.Comments = append(p.Comments, s.loadComment(c))
		}
	}
	sortComments(p.Comments)
	return p
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверка поста
	post, ok := s.posts[comment.PostID]
	if !ok {
		return nil, fmt.Errorf("post with id %d: %w", comment.PostID, domain.ErrNotFound)
	}
	if post.Status == domain.PostDeleted {
		return nil, fmt.Errorf("post %d is deleted: %w", post.ID, domain.ErrValidation)
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return nil, fmt.Errorf("user with id %d: %w", comment.AuthorID, domain.ErrNotFound)
	}

	c := *comment
	c.Author = nil
	c.ID = s.nextID("comments")
	c.CreatedAt = s.now()
	if c.Status == "" {
		c.Status = domain.CommentDraft
	}
	s.comments[c.ID] = &c
	return s.loadComment(&c), nil
}

func (s *Store) GetCommentByID(ctx context.Context, id uint) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment with id %d: %w", id, domain.ErrNotFound)
	}
	return s.loadComment(c), nil
}

func (s *Store) GetComments(ctx context.Context, filter storage.CommentFilter, args storage.PaginationArgs) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Comment, 0)
	for _, c := range s.comments {
		if filter.PostID != 0 && c.PostID != filter.PostID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.ViewerID != 0 && c.Status != domain.CommentPublished && c.AuthorID != filter.ViewerID {
			continue
		}
		matched = append(matched, s.loadComment(c))
	}
	sortComments(matched)
	return paginate(matched, args), nil
}

func (s *Store) UpdateComment(ctx context.Context, id uint, fn func(*domain.Comment) error) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment with id %d: %w", id, domain.ErrNotFound)
	}
	loaded := s.loadComment(rec)
	if err := fn(loaded); err != nil {
		return nil, err
	}

	c := *loaded
	c.Author = nil
	c.ID = id
	c.PostID = rec.PostID
	c.AuthorID = rec.AuthorID
	c.CreatedAt = rec.CreatedAt
	s.comments[id] = &c
	return s.loadComment(&c), nil
}

func (s *Store) loadComment(rec *domain.Comment) *domain.Comment {
	c := *rec
	c.Author = nil
	if u, ok := s.users[c.AuthorID]; ok {
		c.Author = copyUser(u)
	}
	return &c
}

// Сортируем по времени создания, чтобы пагинация была консистентной
func sortComments(comments []*domain.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}

// === Category Methods ===

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategoryUnique(0, category.Name); err != nil {
		return nil, err
	}
	c := copyCategory(category)
	c.ID = s.nextID("categories")
	s.categories[c.ID] = c
	return copyCategory(c), nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id uint) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	return copyCategory(c), nil
}

func (s *Store) GetCategories(ctx context.Context, args storage.PaginationArgs) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		all = append(all, copyCategory(c))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, args), nil
}

func (s *Store) UpdateCategory(ctx context.Context, id uint, fn func(*domain.Category) error) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	c := copyCategory(rec)
	if err := fn(c); err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.checkCategoryUnique(id, c.Name); err != nil {
		return nil, err
	}
	s.categories[id] = copyCategory(c)
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	for _, p := range s.posts {
		if p.CategoryID == id {
			return fmt.Errorf("category %d still has posts: %w", id, domain.ErrConflict)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) checkCategoryUnique(selfID uint, name string) error {
	for _, c := range s.categories {
		if c.ID != selfID && c.Name == name {
			return fmt.Errorf("category %q already exists: %w", name, domain.ErrConflict)
		}
	}
	return nil
}

// === Tag Methods ===

func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTagUnique(0, tag.Name); err != nil {
		return nil, err
	}
	t := copyTag(tag)
	t.ID = s.nextID("tags")
	s.tags[t.ID] = t
	return copyTag(t), nil
}

func (s *Store) GetTagByID(ctx context.Context, id uint) (*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag with id %d: %w", id, domain.ErrNotFound)
	}
	return copyTag(t), nil
}

func (s *Store) GetTags(ctx context.Context, args storage.PaginationArgs) ([]*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		all = append(all, copyTag(t))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, args), nil
}

func (s *Store) GetTagsByIDs(ctx context.Context, ids []uint) ([]*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Tag, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if t, ok := s.tags[id]; ok {
			result = append(result, copyTag(t))
		}
	}
	return result, nil
}

func (s *Store) UpdateTag(ctx context.Context, id uint, fn func(*domain.Tag) error) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag with id %d: %w", id, domain.ErrNotFound)
	}
	t := copyTag(rec)
	if err := fn(t); err != nil {
		return nil, err
	}
	t.ID = id
	if err := s.checkTagUnique(id, t.Name); err != nil {
		return nil, err
	}
	s.tags[id] = copyTag(t)
	return t, nil
}

func (s *Store) DeleteTag(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[id]; !ok {
		return fmt.Errorf("tag with id %d: %w", id, domain.ErrNotFound)
	}
	for _, set := range s.postTags {
		delete(set, id)
	}
	delete(s.tags, id)
	return nil
}

func (s *Store) checkTagUnique(selfID uint, name string) error {
	for _, t := range s.tags {
		if t.ID != selfID && t.Name == name {
			return fmt.Errorf("tag %q already exists: %w", name, domain.ErrConflict)
		}
	}
	return nil
}

// === Dataloader Methods ===

func (s *Store) CountPostsByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[uint]int64, len(authorIDs))
	for _, id := range authorIDs {
		results[id] = 0
	}
	for _, p := range s.posts {
		if _, ok := results[p.AuthorID]; ok {
			results[p.AuthorID]++
		}
	}
	return results, nil
}

// === Helpers ===

func paginate[T any](items []T, args storage.PaginationArgs) []T {
	start := args.Offset
	if start >= len(items) {
		return []T{}
	}
	if start < 0 {
		start = 0
	}
	end := len(items)
	if args.Limit > 0 && start+args.Limit < end {
		end = start + args.Limit
	}
	return items[start:end]
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Posts, c.Comments = nil, nil
	return &c
}

func stripPost(p *domain.Post) *domain.Post {
	c := *p
	c.Author, c.Category, c.Tags, c.Comments = nil, nil, nil, nil
	return &c
}

func copyCategory(c *domain.Category) *domain.Category {
	cp := *c
	cp.Posts = nil
	return &cp
}

func copyTag(t *domain.Tag) *domain.Tag {
	cp := *t
	cp.Posts = nil
	return &cp
}
