package voting_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/db/memory"
	"serotonyl.ru/edu-engagement/internal/events"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
	"serotonyl.ru/edu-engagement/internal/features/voting"
)

const (
	authorID = int64(1)
	voterID  = int64(2)
	reward   = int64(10)
)

type failingAwarder struct{}

func (failingAwarder) Award(context.Context, int64, int64, string) (int64, error) {
	return 0, common.ErrStorageFailure
}

func setup(t *testing.T, awarder voting.Awarder) (*memory.DB, *voting.Service, *voting.Post) {
	t.Helper()
	ctx := context.Background()
	db := memory.New()
	for _, id := range []int64{authorID, voterID, 3} {
		_, err := db.CreateMember(ctx, &members.Member{ID: id})
		require.NoError(t, err)
	}
	if awarder == nil {
		awarder = ledger.NewService(db, nil)
	}
	svc := voting.NewService(db, awarder, &events.MemoryPublisher{}, reward)
	post, err := svc.CreatePost(ctx, authorID, "Как я сдал ЕГЭ")
	require.NoError(t, err)
	return db, svc, post
}

func TestVoteRewardsAuthorOnce(t *testing.T) {
	ctx := context.Background()
	db, svc, post := setup(t, nil)

	out, err := svc.Vote(ctx, voterID, post.ID)
	require.NoError(t, err)
	assert.True(t, out.Voted)
	assert.True(t, out.Rewarded)
	assert.Equal(t, int64(1), out.Upvotes)

	out, err = svc.Vote(ctx, voterID, post.ID)
	require.NoError(t, err)
	assert.False(t, out.Voted)
	assert.True(t, out.AlreadyVoted)
	assert.False(t, out.Rewarded)
	assert.Equal(t, voting.MsgAlreadyVoted, out.Message)
	assert.Equal(t, int64(1), out.Upvotes)

	balance, err := db.GetBalance(ctx, authorID)
	require.NoError(t, err)
	assert.Equal(t, reward, balance)

	// Голосующий ничего не получает
	balance, err = db.GetBalance(ctx, voterID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	voted, err := svc.HasVoted(ctx, voterID, post.ID)
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestVoteConcurrentDoubleSubmit(t *testing.T) {
	ctx := context.Background()
	db, svc, post := setup(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Vote(ctx, voterID, post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := svc.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Upvotes)

	balance, err := db.GetBalance(ctx, authorID)
	require.NoError(t, err)
	assert.Equal(t, reward, balance)
}

func TestSelfVoteCountsWithoutReward(t *testing.T) {
	ctx := context.Background()
	db, svc, post := setup(t, nil)

	out, err := svc.Vote(ctx, authorID, post.ID)
	require.NoError(t, err)
	assert.True(t, out.Voted)
	assert.False(t, out.Rewarded)
	assert.Equal(t, int64(1), out.Upvotes)

	balance, err := db.GetBalance(ctx, authorID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestVoteStandsWhenAwardFails(t *testing.T) {
	ctx := context.Background()
	_, svc, post := setup(t, failingAwarder{})

	out, err := svc.Vote(ctx, voterID, post.ID)
	require.NoError(t, err)
	assert.True(t, out.Voted)
	assert.False(t, out.Rewarded)

	p, err := svc.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Upvotes)

	// Повтор не даёт второго голоса
	out, err = svc.Vote(ctx, voterID, post.ID)
	require.NoError(t, err)
	assert.True(t, out.AlreadyVoted)
}

func TestVoteErrors(t *testing.T) {
	ctx := context.Background()
	_, svc, post := setup(t, nil)

	_, err := svc.Vote(ctx, voterID, 999)
	assert.ErrorIs(t, err, common.ErrPostNotFound)

	_, err = svc.Vote(ctx, voterID, 0)
	assert.ErrorIs(t, err, common.ErrInvalidID)

	_, err = svc.Vote(ctx, 404, post.ID)
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = svc.CreatePost(ctx, 404, "ghost")
	assert.True(t, errors.Is(err, common.ErrUserNotFound))
}

func TestPostCountsEachVoter(t *testing.T) {
	ctx := context.Background()
	db, svc, post := setup(t, nil)

	_, err := svc.Vote(ctx, voterID, post.ID)
	require.NoError(t, err)
	out, err := svc.Vote(ctx, 3, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Upvotes)

	p, err := svc.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, p.Downvotes)

	balance, err := db.GetBalance(ctx, authorID)
	require.NoError(t, err)
	assert.Equal(t, 2*reward, balance)
}
