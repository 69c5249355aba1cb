package service

import (
	"context"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleBookmarkTwice(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.createUser(t, "alice", model.RoleUser)
	bob := env.createUser(t, "bob", model.RoleUser)
	mod := env.createUser(t, "mod", model.RoleAdmin)
	approved := env.createApproved(t, alice, mod, "Keep me")

	resp, err := env.bookmarks.Toggle(ctx, Scope{Actor: bob}, approved.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsBookmarked)

	// 收藏状态只对当前用户可见
	other, err := env.prompts.Get(ctx, Scope{Actor: alice}, approved.ID)
	require.NoError(t, err)
	assert.False(t, other.IsBookmarked)

	resp, err = env.bookmarks.Toggle(ctx, Scope{Actor: bob}, approved.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsBookmarked)
	assert.Zero(t, env.countRows(t, &model.Bookmark{}, approved.ID))
}

func TestBookmarkHiddenPrompt(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.createUser(t, "alice", model.RoleUser)
	bob := env.createUser(t, "bob", model.RoleUser)

	pending, err := env.prompts.Create(ctx, alice, validInput("Hidden"))
	require.NoError(t, err)

	_, err = env.bookmarks.Toggle(ctx, Scope{Actor: bob}, pending.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestListBookmarks(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.createUser(t, "alice", model.RoleUser)
	bob := env.createUser(t, "bob", model.RoleUser)
	mod := env.createUser(t, "mod", model.RoleAdmin)
	first := env.createApproved(t, alice, mod, "First")
	second := env.createApproved(t, alice, mod, "Second")
	env.createApproved(t, alice, mod, "Not bookmarked")

	_, err := env.bookmarks.Toggle(ctx, Scope{Actor: bob}, first.ID)
	require.NoError(t, err)
	_, err = env.bookmarks.Toggle(ctx, Scope{Actor: bob}, second.ID)
	require.NoError(t, err)

	page, err := env.bookmarks.List(ctx, bob, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.List, 2)
	for _, p := range page.List {
		assert.True(t, p.IsBookmarked)
	}

	// 提示词回到待审核后不再出现在别人的收藏里
	_, err = env.prompts.Update(ctx, Scope{Actor: alice}, first.ID, PromptInput{Title: strPtr("First v2")}, true)
	require.NoError(t, err)
	page, err = env.bookmarks.List(ctx, bob, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.List, 1)
	assert.Equal(t, second.ID, page.List[0].ID)
}
