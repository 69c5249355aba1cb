package service

import (
	"context"
	"fmt"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAggregates(t *testing.T, env *testEnv, promptID uint, likes, dislikes int) {
	t.Helper()
	p := env.loadPrompt(t, promptID)
	assert.Equal(t, likes, p.LikeCount, "like_count")
	assert.Equal(t, dislikes, p.DislikeCount, "dislike_count")
	assert.Equal(t, p.LikeCount-p.DislikeCount, p.Vote, "vote")
}

func TestSameDirectionTwiceRetractsVote(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.createUser(t, "alice", model.RoleUser)
	bob := env.createUser(t, "bob", model.RoleUser)
	mod := env.createUser(t, "mod", model.RoleAdmin)
	approved := env.createApproved(t, alice, mod, "Votable")

	for _, value := range []int{model.VoteUp, model.VoteDown} {
		resp, err := env.votes.CastVote(ctx, Scope{Actor: bob}, approved.ID, value)
		require.NoError(t, err)
		assert.Equal(t, value, resp.UserVote)
		assert.Equal(t, value, resp.Vote)
		assert.Equal(t, value, resp.VoteCount)

		resp, err = env.votes.CastVote(ctx, Scope{Actor: bob}, approved.ID, value)
		require.NoError(t, err)
		assert.Zero(t, resp.UserVote)
		assertAggregates(t, env, approved.ID, 0, 0)
		assert.Zero(t, env.countRows(t, &model.Vote{}, approved.ID))
	}
}

func TestSwitchingDirectionKeepsSingleRow(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.createUser(t, "alice", model.RoleUser)
	bob := env.createUser(t, "bob", model.RoleUser)
	mod := env.createUser(t, "mod", model.RoleAdmin)
	approved := env.createApproved(t, alice, mod, "Votable")

	_, err := env.votes.CastVote(ctx, Scope{Actor: bob}, approved.ID, model.VoteUp)
	require.NoError(t, err)
	assertAggregates(t, env, approved.ID, 1, 0)

	resp, err := env.votes.CastVote(ctx, Scope{Actor: bob}, approved.ID, model.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, model.VoteDown, resp.UserVote)
	assertAggregates(t, env, approved.ID, 0, 1)

	var n int64
	require.NoError(t, env.db.Model(&model.Vote{}).
		Where("user_id = ? AND prompt_id = ?", bob.UserID, approved.ID).
		Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestVoteRequiresVisibility(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.createUser(t, "alice", model.RoleUser)
	bob := env.createUser(t, "bob", model.RoleUser)

	pending, err := env.prompts.Create(ctx, alice, validInput("Hidden"))
	require.NoError(t, err)

	_, err = env.votes.CastVote(ctx, Scope{Actor: bob}, pending.ID, model.VoteUp)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = env.votes.CastVote(ctx, Scope{Actor: bob}, pending.ID, 2)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestConcurrentVotesStayConsistent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.createUser(t, "alice", model.RoleUser)
	mod := env.createUser(t, "mod", model.RoleAdmin)
	approved := env.createApproved(t, alice, mod, "Popular")

	voters := make([]Actor, 12)
	for i := range voters {
		voters[i] = env.createUser(t, fmt.Sprintf("voter%d", i), model.RoleUser)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(voters))
	for i, voter := range voters {
		value := model.VoteUp
		if i%3 == 0 {
			value = model.VoteDown
		}
		wg.Add(1)
		go func(a Actor, v int) {
			defer wg.Done()
			_, err := env.votes.CastVote(ctx, Scope{Actor: a}, approved.ID, v)
			errs <- err
		}(voter, value)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assertAggregates(t, env, approved.ID, 8, 4)
}
