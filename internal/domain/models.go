package domain

import "time"

// User представляет пользователя. Email и username уникальны.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"type:varchar(100);not null"`
	Surname      string     `json:"surname" gorm:"type:varchar(100);not null"`
	Email        string     `json:"email" gorm:"type:varchar(150);not null;uniqueIndex"`
	Username     string     `json:"username" gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"type:varchar(400);not null"`
	Role         Role       `json:"role" gorm:"type:varchar(16);not null;default:'user'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"not null;default:now()"`
	Posts        []*Post    `json:"-" gorm:"foreignKey:AuthorID"` // gorm only
	Comments     []*Comment `json:"-" gorm:"foreignKey:AuthorID"` // gorm only
}

// IsAdmin - есть ли у пользователя роль admin.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

func (u *User) Activate() { u.Status = UserActive }
func (u *User) Block()    { u.Status = UserBlocked }
func (u *User) Delete()   { u.Status = UserInactive }

// SetStatus вызывает сеттер для уже разобранного статуса.
func (u *User) SetStatus(s UserStatus) {
	switch s {
	case UserActive:
		u.Activate()
	case UserBlocked:
		u.Block()
	case UserInactive:
		u.Delete()
	}
}

// Post представляет пост в системе.
type Post struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title" gorm:"type:varchar(100);not null"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	AuthorID   uint       `json:"authorId" gorm:"not null;index"`
	Author     *User      `json:"-" gorm:"foreignKey:AuthorID"`
	CategoryID uint       `json:"categoryId" gorm:"not null;index"`
	Category   *Category  `json:"-" gorm:"foreignKey:CategoryID"`
	Status     PostStatus `json:"status" gorm:"type:varchar(16);not null;default:'draft';index"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"not null;default:now()"`
	UpdatedAt  time.Time  `json:"updatedAt" gorm:"not null;default:now()"`
	Tags       []*Tag     `json:"-" gorm:"many2many:post_tags;"`
	Comments   []*Comment `json:"-" gorm:"foreignKey:PostID"` // gorm only
}

func (p *Post) Publish() { p.Status = PostPublished }
func (p *Post) Draft()   { p.Status = PostDraft }
func (p *Post) Delete()  { p.Status = PostDeleted }

func (p *Post) SetStatus(s PostStatus) {
	switch s {
	case PostPublished:
		p.Publish()
	case PostDraft:
		p.Draft()
	case PostDeleted:
		p.Delete()
	}
}

// AddTags добавляет теги, которых у поста еще нет.
func (p *Post) AddTags(tags ...*Tag) {
	seen := make(map[uint]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		seen[t.ID] = struct{}{}
	}
	for _, t := range tags {
		if t == nil {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		p.Tags = append(p.Tags, t)
	}
}

// Comment is a reply to a Post.
type Comment struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	Content   string        `json:"content" gorm:"type:text;not null"`
	PostID    uint          `json:"postId" gorm:"not null;index"`
	AuthorID  uint          `json:"authorId" gorm:"not null;index"`
	Author    *User         `json:"-" gorm:"foreignKey:AuthorID"`
	Status    CommentStatus `json:"status" gorm:"type:varchar(16);not null;default:'draft'"`
	CreatedAt time.Time     `json:"createdAt" gorm:"not null;default:now()"`
}

func (c *Comment) Publish() { c.Status = CommentPublished }
func (c *Comment) Draft()   { c.Status = CommentDraft }

func (c *Comment) SetStatus(s CommentStatus) {
	switch s {
	case CommentPublished:
		c.Publish()
	case CommentDraft:
		c.Draft()
	}
}

// Category - категория постов, имя уникально.
type Category struct {
	ID    uint    `json:"id" gorm:"primaryKey"`
	Name  string  `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Posts []*Post `json:"-" gorm:"foreignKey:CategoryID"` // gorm only
}

// Tag - метка поста, имя уникально.
type Tag struct {
	ID    uint    `json:"id" gorm:"primaryKey"`
	Name  string  `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Posts []*Post `json:"-" gorm:"many2many:post_tags;"` // gorm only
}
