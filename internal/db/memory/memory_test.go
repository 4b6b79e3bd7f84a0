package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/features/members"
	"serotonyl.ru/edu-engagement/internal/features/voting"
)

func seed(t *testing.T, db *DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		_, err := db.CreateMember(context.Background(), &members.Member{ID: id})
		require.NoError(t, err)
	}
}

func TestAppendEntryKeepsBalanceEqualToLedger(t *testing.T) {
	db := New()
	seed(t, db, 1, 2)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, _ = db.AppendEntry(ctx, 1, 3, "test")
		}()
		go func() {
			defer wg.Done()
			_, _, _ = db.AppendEntry(ctx, 2, -1, "test")
		}()
	}
	wg.Wait()

	b1, err := db.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), b1)
	b2, err := db.GetBalance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-50), b2)

	drifts, err := db.FindDrift(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestAppendEntryUnknownUser(t *testing.T) {
	db := New()
	_, _, err := db.AppendEntry(context.Background(), 9, 10, "test")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestAppendEntryCancelledContext(t *testing.T) {
	db := New()
	seed(t, db, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := db.AppendEntry(ctx, 1, 10, "test")
	assert.ErrorIs(t, err, common.ErrStorageFailure)

	b, _ := db.GetBalance(context.Background(), 1)
	assert.Zero(t, b)
}

func TestCreateMemberKeepsBalance(t *testing.T) {
	db := New()
	ctx := context.Background()
	seed(t, db, 1)
	_, _, err := db.AppendEntry(ctx, 1, 40, "test")
	require.NoError(t, err)

	m := &members.Member{ID: 1, DisplayName: "Аня", KarmaBalance: 999}
	created, err := db.CreateMember(ctx, m)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(40), m.KarmaBalance)
	assert.Equal(t, "Аня", m.DisplayName)
}

func TestGuardsInsertOnce(t *testing.T) {
	db := New()
	seed(t, db, 1)
	ctx := context.Background()

	ok, err := db.InsertLessonCompletion(ctx, 1, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.InsertLessonCompletion(ctx, 1, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	// Урок и курс с одним id — разные гарды
	ok, err = db.InsertEnrollmentReward(ctx, 1, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, db.DeleteLessonCompletion(ctx, 1, 7))
	ok, err = db.InsertLessonCompletion(ctx, 1, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = db.InsertLessonCompletion(ctx, 2, 7)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestInsertVoteConcurrent(t *testing.T) {
	db := New()
	seed(t, db, 1, 2)
	ctx := context.Background()

	post := &voting.Post{AuthorID: 1, Title: "post", Upvotes: 5}
	require.NoError(t, db.CreatePost(ctx, post))
	assert.Zero(t, post.Upvotes)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := db.InsertVote(ctx, 2, post.ID)
			if err == nil && ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	got, err := db.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Upvotes)

	voted, err := db.HasVoted(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.True(t, voted)

	_, _, err = db.InsertVote(ctx, 2, post.ID+100)
	assert.ErrorIs(t, err, common.ErrPostNotFound)
}

func TestRankingCounts(t *testing.T) {
	db := New()
	seed(t, db, 1, 2, 3)
	ctx := context.Background()
	_, _, _ = db.AppendEntry(ctx, 1, 30, "test")
	_, _, _ = db.AppendEntry(ctx, 2, 30, "test")
	_, _, _ = db.AppendEntry(ctx, 3, 10, "test")

	above, err := db.CountAbove(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), above)

	above, err = db.CountAbove(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, above)

	total, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
