package service

import (
	"context"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioSubmitVoteEditReapprove(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	userA := env.createUser(t, "user_a", model.RoleUser)
	userB := env.createUser(t, "user_b", model.RoleUser)
	mod := env.createUser(t, "moderator", model.RoleAdmin)

	r, err := env.prompts.Create(ctx, userA, validInput("Original title"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, r.Status)

	approved, err := env.moderation.Approve(ctx, Scope{Actor: mod}, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)

	voted, err := env.votes.CastVote(ctx, Scope{Actor: userB}, r.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Vote)
	assert.Equal(t, 1, voted.LikeCount)
	assert.Equal(t, 0, voted.DislikeCount)

	voted, err = env.votes.CastVote(ctx, Scope{Actor: userB}, r.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 0, voted.Vote)
	assert.Equal(t, 0, voted.LikeCount)
	assert.Equal(t, 0, voted.DislikeCount)
	assert.Zero(t, env.countRows(t, &model.Vote{}, r.ID))

	edited, err := env.prompts.Update(ctx, Scope{Actor: userA}, r.ID, PromptInput{Title: strPtr("Edited title")}, true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, edited.Status)

	versions, err := env.repos.version.ListByPrompt(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "Original title", versions[0].Title)

	reapproved, err := env.moderation.Approve(ctx, Scope{Actor: mod}, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, reapproved.Status)
	assert.Equal(t, "Edited title", reapproved.Title)
}

func TestScenarioDeletionReview(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.createUser(t, "owner", model.RoleUser)
	fan := env.createUser(t, "fan", model.RoleUser)
	mod := env.createUser(t, "moderator", model.RoleAdmin)

	kept := env.createApproved(t, owner, mod, "Keep")
	requested, err := env.moderation.RequestDelete(ctx, Scope{Actor: owner}, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingDeletion, requested.Status)

	restored, deleted, err := env.moderation.ReviewDelete(ctx, Scope{Actor: mod}, kept.ID, "reject")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, model.StatusApproved, restored.Status)
	assert.Equal(t, "Keep", restored.Title)

	doomed := env.createApproved(t, owner, mod, "Remove")
	_, err = env.votes.CastVote(ctx, Scope{Actor: fan}, doomed.ID, model.VoteDown)
	require.NoError(t, err)
	_, err = env.bookmarks.Toggle(ctx, Scope{Actor: fan}, doomed.ID)
	require.NoError(t, err)
	_, err = env.prompts.Update(ctx, Scope{Actor: mod}, doomed.ID, PromptInput{Guidance: optStr("edited")}, true)
	require.NoError(t, err)
	_, err = env.moderation.RequestDelete(ctx, Scope{Actor: owner}, doomed.ID)
	require.NoError(t, err)

	resp, deleted, err := env.moderation.ReviewDelete(ctx, Scope{Actor: mod}, doomed.ID, "approve")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Nil(t, resp)

	_, err = env.prompts.Get(ctx, Scope{Actor: mod}, doomed.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.Zero(t, env.countRows(t, &model.PromptVersion{}, doomed.ID))
	assert.Zero(t, env.countRows(t, &model.Vote{}, doomed.ID))
	assert.Zero(t, env.countRows(t, &model.Bookmark{}, doomed.ID))

	// 另一条提示词不受影响
	_, err = env.prompts.Get(ctx, Scope{Actor: fan}, kept.ID)
	assert.NoError(t, err)
}
