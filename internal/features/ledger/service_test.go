package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/db/memory"
	"serotonyl.ru/edu-engagement/internal/events"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
)

func setup(t *testing.T, userIDs ...int64) (*memory.DB, *ledger.Service, *events.MemoryPublisher) {
	t.Helper()
	db := memory.New()
	for _, id := range userIDs {
		_, err := db.CreateMember(context.Background(), &members.Member{ID: id})
		require.NoError(t, err)
	}
	pub := &events.MemoryPublisher{}
	return db, ledger.NewService(db, pub), pub
}

func TestAwardKeepsBalanceEqualToLedgerSum(t *testing.T) {
	ctx := context.Background()
	_, svc, pub := setup(t, 1)

	for _, amount := range []int64{50, 10, -5, 30} {
		_, err := svc.Award(ctx, 1, amount, "test")
		require.NoError(t, err)
	}

	balance, err := svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(85), balance)

	history, err := svc.History(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	var sum int64
	for _, e := range history {
		sum += e.Amount
	}
	assert.Equal(t, balance, sum)
	assert.Equal(t, int64(30), history[0].Amount, "новые записи первыми")

	drifts, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	assert.Len(t, pub.Events(), 4)
	assert.Equal(t, events.TypeKarmaAwarded, pub.Events()[0].Type)
}

func TestAwardConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := setup(t, 1)

	const n = 100
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.Award(ctx, 1, 1, "concurrent")
			return err
		})
	}
	require.NoError(t, g.Wait())

	balance, err := svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(n), balance)

	history, err := svc.History(ctx, 1, ledger.MaxHistoryLimit)
	require.NoError(t, err)
	assert.Len(t, history, n)
}

func TestAwardRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	_, svc, pub := setup(t, 1)

	_, err := svc.Award(ctx, 1, 0, "zero")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = svc.Award(ctx, 1, 10, "   ")
	assert.ErrorIs(t, err, common.ErrInvalidReason)

	_, err = svc.Award(ctx, 42, 10, "ghost")
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	history, err := svc.History(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, pub.Events())
}

func TestAwardCancelledContextWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, svc, _ := setup(t, 1)

	_, err := svc.Award(ctx, 1, 10, "cancelled")
	assert.ErrorIs(t, err, common.ErrStorageFailure)

	balance, err := svc.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestHistoryLimits(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := setup(t, 1)

	for i := 0; i < ledger.MaxHistoryLimit+5; i++ {
		_, err := svc.Award(ctx, 1, 1, "bulk")
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, history, ledger.DefaultHistoryLimit)

	history, err = svc.History(ctx, 1, 10_000)
	require.NoError(t, err)
	assert.Len(t, history, ledger.MaxHistoryLimit)

	_, err = svc.History(ctx, 99, 10)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestReconcileFindsDrift(t *testing.T) {
	ctx := context.Background()
	db, svc, _ := setup(t, 1, 2)

	_, err := svc.Award(ctx, 1, 40, "test")
	require.NoError(t, err)
	_, err = svc.Award(ctx, 2, 15, "test")
	require.NoError(t, err)

	db.ForceBalance(2, 999)

	drifts, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, ledger.Drift{UserID: 2, Cached: 999, LedgerSum: 15}, drifts[0])
}
