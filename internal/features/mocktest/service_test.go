package mocktest_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/db/memory"
	"serotonyl.ru/edu-engagement/internal/events"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
	"serotonyl.ru/edu-engagement/internal/features/mocktest"
)

const userID = int64(1)

type failingAwarder struct{}

func (failingAwarder) Award(context.Context, int64, int64, string) (int64, error) {
	return 0, common.ErrStorageFailure
}

type env struct {
	db     *memory.DB
	ledger *ledger.Service
	svc    *mocktest.Service
	test   *mocktest.MockTest
	pub    *events.MemoryPublisher
}

func setup(t *testing.T, awarder mocktest.Awarder) *env {
	t.Helper()
	ctx := context.Background()

	tick := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	db := memory.New().WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})
	_, err := db.CreateMember(ctx, &members.Member{ID: userID})
	require.NoError(t, err)

	l := ledger.NewService(db, nil)
	if awarder == nil {
		awarder = l
	}
	pub := &events.MemoryPublisher{}
	svc := mocktest.NewService(db, awarder, pub, 40)
	test, err := svc.CreateMockTest(ctx, "Пробник по математике", 100, 0)
	require.NoError(t, err)
	return &env{db: db, ledger: l, svc: svc, test: test, pub: pub}
}

func (e *env) balance(t *testing.T) int64 {
	t.Helper()
	b, err := e.ledger.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func TestRecordAttemptAce(t *testing.T) {
	e := setup(t, nil)

	res, err := e.svc.RecordAttempt(context.Background(), userID, e.test.ID, 95, 95)
	require.NoError(t, err)
	assert.Equal(t, mocktest.StatusPassed, res.Status)
	assert.Equal(t, int64(50), res.KarmaDelta)
	assert.Equal(t, "ace performance", res.Reason)
	assert.Equal(t, int64(50), res.Balance)
	assert.Equal(t, int64(50), e.balance(t))
	assert.NotZero(t, res.Attempt.ID)

	evts := e.pub.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeMockTestRecorded, evts[0].Type)
}

func TestRecordAttemptFailedIsPenalty(t *testing.T) {
	e := setup(t, nil)

	res, err := e.svc.RecordAttempt(context.Background(), userID, e.test.ID, 20, 20)
	require.NoError(t, err)
	assert.Equal(t, mocktest.StatusFailed, res.Status)
	assert.Equal(t, int64(-5), res.KarmaDelta)
	assert.Equal(t, int64(-5), e.balance(t))
}

func TestRetakesAwardEachTime(t *testing.T) {
	ctx := context.Background()
	e := setup(t, nil)

	_, err := e.svc.RecordAttempt(ctx, userID, e.test.ID, 60, 60)
	require.NoError(t, err)
	_, err = e.svc.RecordAttempt(ctx, userID, e.test.ID, 80, 80)
	require.NoError(t, err)

	assert.Equal(t, int64(10+30), e.balance(t))

	latest, err := e.svc.LatestAttempt(ctx, userID, e.test.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, latest.Percentage)

	attempts, err := e.svc.Attempts(ctx, userID, e.test.ID, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 80.0, attempts[0].Percentage)

	history, err := e.ledger.History(ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRecordAttemptUsesTestThreshold(t *testing.T) {
	ctx := context.Background()
	e := setup(t, nil)

	strict, err := e.svc.CreateMockTest(ctx, "Строгий", 100, 95)
	require.NoError(t, err)

	res, err := e.svc.RecordAttempt(ctx, userID, strict.ID, 92, 92)
	require.NoError(t, err)
	assert.Equal(t, mocktest.StatusFailed, res.Status)
	assert.Equal(t, int64(-5), res.KarmaDelta)
}

func TestRecordAttemptAwardFailureRemovesAttempt(t *testing.T) {
	ctx := context.Background()
	e := setup(t, failingAwarder{})

	_, err := e.svc.RecordAttempt(ctx, userID, e.test.ID, 95, 95)
	require.ErrorIs(t, err, common.ErrStorageFailure)

	_, err = e.svc.LatestAttempt(ctx, userID, e.test.ID)
	assert.ErrorIs(t, err, common.ErrAttemptNotFound)
	assert.Empty(t, e.pub.Events())
}

func TestRecordAttemptValidation(t *testing.T) {
	ctx := context.Background()
	e := setup(t, nil)

	tests := []struct {
		name       string
		score, pct float64
	}{
		{"negative percentage", 10, -1},
		{"percentage over 100", 10, 101},
		{"score over max", 150, 90},
		{"negative score", -1, 10},
		{"nan", math.NaN(), 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.RecordAttempt(ctx, userID, e.test.ID, tt.score, tt.pct)
			assert.ErrorIs(t, err, common.ErrInvalidScore)
		})
	}
	assert.Zero(t, e.balance(t))

	_, err := e.svc.RecordAttempt(ctx, userID, 999, 50, 50)
	assert.ErrorIs(t, err, common.ErrMockTestNotFound)

	_, err = e.svc.RecordAttempt(ctx, 404, e.test.ID, 50, 50)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestLatestAttemptWithoutAttempts(t *testing.T) {
	e := setup(t, nil)
	_, err := e.svc.LatestAttempt(context.Background(), userID, e.test.ID)
	assert.ErrorIs(t, err, common.ErrAttemptNotFound)
}

func TestCreateMockTestValidation(t *testing.T) {
	e := setup(t, nil)
	_, err := e.svc.CreateMockTest(context.Background(), "bad", 100, 120)
	assert.ErrorIs(t, err, common.ErrInvalidScore)
}
