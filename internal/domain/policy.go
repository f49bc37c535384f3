package domain

import "fmt"

// CanAct - может ли actor действовать над ресурсом владельца ownerID.
// Владелец пользователя - он сам, поста и комментария - автор.
func CanAct(actor *User, ownerID uint) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == ownerID
}

// Authorize - CanAct в виде ошибки.
func Authorize(actor *User, ownerID uint) error {
	if !CanAct(actor, ownerID) {
		return fmt.Errorf("not allowed to act on a resource of user %d: %w", ownerID, ErrForbidden)
	}
	return nil
}

func RequireAdmin(actor *User) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("admin role required: %w", ErrForbidden)
	}
	return nil
}

// CanChangePassword: пароль меняет только сам владелец, админ тоже нет.
func CanChangePassword(actor, target *User) bool {
	return actor != nil && target != nil && actor.ID == target.ID
}

func CanChangeRole(actor *User) bool {
	return actor.IsAdmin()
}

// CanViewPost: опубликованный пост видят все, черновики и удаленные - автор
// и админы.
func CanViewPost(actor *User, p *Post) bool {
	return p.Status == PostPublished || CanAct(actor, p.AuthorID)
}

func CanViewComment(actor *User, c *Comment) bool {
	return c.Status == CommentPublished || CanAct(actor, c.AuthorID)
}
