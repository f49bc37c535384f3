package domain

import "time"

// UserView - либо UserPublicView, либо UserPrivateView.
type UserView interface {
	userView()
}

type UserPublicView struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Status    UserStatus `json:"status"`
	PostCount int64      `json:"post_count"`
}

type UserPrivateView struct {
	ID           uint       `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	RegisteredAt time.Time  `json:"registered_at"`
	PostCount    int64      `json:"post_count"`
}

func (UserPublicView) userView()  {}
func (UserPrivateView) userView() {}

// NewUserPublicView - профиль для чужих глаз. postCount считает вызывающий,
// заново на каждый вызов.
func NewUserPublicView(u *User, postCount int64) UserPublicView {
	return UserPublicView{
		ID:        u.ID,
		Username:  u.Username,
		Status:    u.Status,
		PostCount: postCount,
	}
}

func NewUserPrivateView(u *User, postCount int64) UserPrivateView {
	return UserPrivateView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.Name,
		Surname:      u.Surname,
		Role:         u.Role,
		Status:       u.Status,
		RegisteredAt: u.CreatedAt,
		PostCount:    postCount,
	}
}

// NewUserView отдает приватный профиль, если actor может действовать над u.
func NewUserView(actor, u *User, postCount int64) UserView {
	if CanAct(actor, u.ID) {
		return NewUserPrivateView(u, postCount)
	}
	return NewUserPublicView(u, postCount)
}

type PostView struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Status       PostStatus `json:"status"`
	CategoryID   uint       `json:"category_id"`
	Author       string     `json:"author"`
	CommentCount int        `json:"comment_count"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewPostView ожидает загруженные Author, Tags и Comments. Незагруженные
// комментарии считаются как ноль.
func NewPostView(p *Post) PostView {
	v := PostView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Status:       p.Status,
		CategoryID:   p.CategoryID,
		CommentCount: len(p.Comments),
		Tags:         make([]string, 0, len(p.Tags)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Author != nil {
		v.Author = p.Author.Username
	}
	for _, t := range p.Tags {
		v.Tags = append(v.Tags, t.Name)
	}
	return v
}

type CommentView struct {
	ID        uint          `json:"id"`
	PostID    uint          `json:"post_id"`
	Content   string        `json:"content"`
	Author    string        `json:"author"`
	Status    CommentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

func NewCommentView(c *Comment) CommentView {
	v := CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
	if c.Author != nil {
		v.Author = c.Author.Username
	}
	return v
}

type CategoryView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}

func NewCategoryView(c *Category, postCount int64) CategoryView {
	return CategoryView{ID: c.ID, Name: c.Name, PostCount: postCount}
}

type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewTagView(t *Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name}
}
