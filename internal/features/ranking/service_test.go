package ranking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/db/memory"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
	"serotonyl.ru/edu-engagement/internal/features/ranking"
)

// seed создаёт пользователей 1..10 с балансами 100, 90, ..., 10.
func seed(t *testing.T) *memory.DB {
	t.Helper()
	ctx := context.Background()
	db := memory.New()
	awards := ledger.NewService(db, nil)
	for i := int64(1); i <= 10; i++ {
		_, err := db.CreateMember(ctx, &members.Member{ID: i})
		require.NoError(t, err)
		_, err = awards.Award(ctx, i, 110-10*i, "seed")
		require.NoError(t, err)
	}
	return db
}

func TestTrueRank(t *testing.T) {
	db := seed(t)
	svc := ranking.NewService(db, nil)

	s, err := svc.TrueRank(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(90), s.Balance)
	assert.Equal(t, int64(2), s.Rank)
	assert.Equal(t, int64(10), s.Population)
	assert.Equal(t, 80, s.Percentile)

	s, err = svc.TrueRank(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Rank)
}

func TestTrueRankTiesShareRank(t *testing.T) {
	db := seed(t)
	ctx := context.Background()
	_, err := db.CreateMember(ctx, &members.Member{ID: 11})
	require.NoError(t, err)
	_, err = ledger.NewService(db, nil).Award(ctx, 11, 90, "seed")
	require.NoError(t, err)

	svc := ranking.NewService(db, nil)
	a, err := svc.TrueRank(ctx, 2)
	require.NoError(t, err)
	b, err := svc.TrueRank(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, a.Rank, b.Rank)
}

func TestRankAppliesTransform(t *testing.T) {
	db := seed(t)
	svc := ranking.NewService(db, ranking.InflatedTransform(7, 25000))

	shown, err := svc.Rank(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, shown.Scaled)
	assert.Equal(t, int64(14), shown.Rank)

	truth, err := svc.TrueRank(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), truth.Rank)
}

func TestRankFailsOpenToTruth(t *testing.T) {
	db := seed(t)
	broken := ranking.TransformFunc(func(s ranking.Standing) (ranking.Standing, error) {
		return ranking.Standing{}, errors.New("boom")
	})
	svc := ranking.NewService(db, broken)

	s, err := svc.Rank(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, s.Scaled)
	assert.Equal(t, int64(2), s.Rank)
}

func TestRankUnknownUser(t *testing.T) {
	svc := ranking.NewService(seed(t), nil)
	_, err := svc.Rank(context.Background(), 404)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}
