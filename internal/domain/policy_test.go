package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAct(t *testing.T) {
	admin := &User{ID: 1, Role: RoleAdmin}
	owner := &User{ID: 2, Role: RoleUser}
	other := &User{ID: 3, Role: RoleUser}

	assert.True(t, CanAct(admin, 2))
	assert.True(t, CanAct(owner, 2))
	assert.False(t, CanAct(other, 2))
	assert.False(t, CanAct(nil, 2))

	err := Authorize(other, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, Authorize(owner, 2))
}

func TestPasswordAndRolePolicies(t *testing.T) {
	admin := &User{ID: 1, Role: RoleAdmin}
	target := &User{ID: 2, Role: RoleUser}

	// Admins change roles but never someone else's password.
	assert.True(t, CanChangeRole(admin))
	assert.False(t, CanChangePassword(admin, target))

	// Owners change their password but never their role.
	assert.True(t, CanChangePassword(target, target))
	assert.False(t, CanChangeRole(target))

	assert.ErrorIs(t, RequireAdmin(target), ErrForbidden)
	assert.NoError(t, RequireAdmin(admin))
}

func TestCanViewPost(t *testing.T) {
	author := &User{ID: 2}
	reader := &User{ID: 3}
	post := &Post{AuthorID: 2, Status: PostDraft}

	assert.True(t, CanViewPost(author, post))
	assert.False(t, CanViewPost(reader, post))

	post.Publish()
	assert.True(t, CanViewPost(reader, post))
}

func TestStatusSettersAreIdempotent(t *testing.T) {
	p := &Post{Status: PostDraft}
	p.Publish()
	p.Publish()
	assert.Equal(t, PostPublished, p.Status)

	// Any state may follow any other.
	p.Delete()
	p.SetStatus(PostPublished)
	assert.Equal(t, PostPublished, p.Status)

	u := &User{Status: UserActive}
	u.Delete()
	assert.Equal(t, UserInactive, u.Status)
	u.Block()
	u.Block()
	assert.Equal(t, UserBlocked, u.Status)

	c := &Comment{}
	c.SetStatus(CommentPublished)
	assert.Equal(t, CommentPublished, c.Status)
	c.Draft()
	assert.Equal(t, CommentDraft, c.Status)
}

func TestParseStatus(t *testing.T) {
	st, err := ParsePostStatus(" Published ")
	require.NoError(t, err)
	assert.Equal(t, PostPublished, st)

	_, err = ParsePostStatus("archived")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseCommentStatus("deleted")
	assert.ErrorIs(t, err, ErrValidation)

	us, err := ParseUserStatus("blocked")
	require.NoError(t, err)
	assert.Equal(t, UserBlocked, us)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddTagsSkipsDuplicates(t *testing.T) {
	go1 := &Tag{ID: 1, Name: "go"}
	sql := &Tag{ID: 2, Name: "sql"}
	p := &Post{Tags: []*Tag{go1}}

	p.AddTags(go1, sql, nil, &Tag{ID: 2, Name: "sql"})
	require.Len(t, p.Tags, 2)
	assert.Equal(t, "sql", p.Tags[1].Name)
}

func TestUserViews(t *testing.T) {
	u := &User{
		ID: 7, Name: "Ana", Surname: "Diaz", Email: "ana@example.com",
		Username: "ana", Role: RoleUser, Status: UserActive,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(NewUserPublicView(u, 3))
	require.NoError(t, err)
	var public map[string]any
	require.NoError(t, json.Unmarshal(raw, &public))
	for _, hidden := range []string{"email", "role", "registered_at", "name", "surname"} {
		assert.NotContains(t, public, hidden)
	}
	assert.EqualValues(t, 3, public["post_count"])

	raw, err = json.Marshal(NewUserPrivateView(u, 3))
	require.NoError(t, err)
	var private map[string]any
	require.NoError(t, json.Unmarshal(raw, &private))
	for _, shown := range []string{"email", "role", "registered_at", "name", "surname"} {
		assert.Contains(t, private, shown)
	}

	other := &User{ID: 8, Role: RoleUser}
	assert.IsType(t, UserPublicView{}, NewUserView(other, u, 0))
	assert.IsType(t, UserPrivateView{}, NewUserView(u, u, 0))
	assert.IsType(t, UserPrivateView{}, NewUserView(&User{ID: 1, Role: RoleAdmin}, u, 0))
}

func TestPostView(t *testing.T) {
	p := &Post{
		ID: 1, Title: "t", Content: "c", Status: PostPublished,
		Author:   &User{Username: "ana"},
		Tags:     []*Tag{{ID: 1, Name: "go"}, {ID: 2, Name: "sql"}},
		Comments: []*Comment{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	v := NewPostView(p)
	assert.Equal(t, "ana", v.Author)
	assert.Equal(t, 3, v.CommentCount)
	assert.Equal(t, []string{"go", "sql"}, v.Tags)

	p.Comments = append(p.Comments, &Comment{ID: 4})
	assert.Equal(t, 4, NewPostView(p).CommentCount)
}
