package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/db/memory"
	"serotonyl.ru/edu-engagement/internal/events"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
	"serotonyl.ru/edu-engagement/internal/features/progress"
	"serotonyl.ru/edu-engagement/internal/features/streak"
)

const userID = int64(1)

var rewards = progress.Rewards{LessonCompletion: 50, EnrollmentBonus: 25}

// flakyAwarder падает первые fails раз, потом передаёт вызов дальше.
type flakyAwarder struct {
	next  progress.Awarder
	fails int
}

func (f *flakyAwarder) Award(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	if f.fails > 0 {
		f.fails--
		return 0, common.ErrStorageFailure
	}
	return f.next.Award(ctx, userID, amount, reason)
}

type brokenStreaks struct{}

func (brokenStreaks) Touch(context.Context, int64) (*streak.Streak, streak.Transition, error) {
	return nil, "", errors.New("streaks down")
}

type env struct {
	db     *memory.DB
	ledger *ledger.Service
	pub    *events.MemoryPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memory.New()
	_, err := db.CreateMember(context.Background(), &members.Member{ID: userID})
	require.NoError(t, err)
	return &env{db: db, ledger: ledger.NewService(db, nil), pub: &events.MemoryPublisher{}}
}

func (e *env) service(awarder progress.Awarder, streaks progress.Toucher) *progress.Service {
	if awarder == nil {
		awarder = e.ledger
	}
	return progress.NewService(e.db, awarder, streaks, e.pub, rewards)
}

func (e *env) streaks() *streak.Service {
	return streak.NewService(e.db, nil, time.UTC)
}

func (e *env) balance(t *testing.T) int64 {
	t.Helper()
	b, err := e.ledger.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := e.service(nil, e.streaks())

	out, err := svc.CompleteLesson(ctx, userID, 42)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, int64(50), out.KarmaAwarded)
	require.NotNil(t, out.Streak)
	assert.Equal(t, 1, out.Streak.CurrentStreak)

	out, err = svc.CompleteLesson(ctx, userID, 42)
	require.NoError(t, err)
	assert.False(t, out.Completed)
	assert.True(t, out.AlreadyCompleted)
	assert.Equal(t, progress.MsgLessonAlreadyCompleted, out.Message)

	assert.Equal(t, int64(50), e.balance(t))

	// Другой урок — новая награда
	_, err = svc.CompleteLesson(ctx, userID, 43)
	require.NoError(t, err)
	assert.Equal(t, int64(100), e.balance(t))
	assert.Len(t, e.pub.Events(), 2)
}

func TestCompleteLessonRetryAfterAwardFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := e.service(&flakyAwarder{next: e.ledger, fails: 1}, nil)

	_, err := svc.CompleteLesson(ctx, userID, 42)
	require.ErrorIs(t, err, common.ErrStorageFailure)
	assert.Zero(t, e.balance(t))

	out, err := svc.CompleteLesson(ctx, userID, 42)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, int64(50), e.balance(t))
}

func TestCompleteLessonStreakFailureKeepsReward(t *testing.T) {
	e := newEnv(t)
	svc := e.service(nil, brokenStreaks{})

	out, err := svc.CompleteLesson(context.Background(), userID, 42)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Nil(t, out.Streak)
	assert.Equal(t, int64(50), e.balance(t))
}

func TestCompleteLessonErrors(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := e.service(nil, nil)

	_, err := svc.CompleteLesson(ctx, userID, 0)
	assert.ErrorIs(t, err, common.ErrInvalidID)

	_, err = svc.CompleteLesson(ctx, 404, 42)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestEnrollmentBonusOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := e.service(nil, nil)

	out, err := svc.OnEnrollmentSucceeded(ctx, userID, 7)
	require.NoError(t, err)
	assert.True(t, out.Awarded)
	assert.Equal(t, int64(25), out.Balance)

	out, err = svc.OnEnrollmentSucceeded(ctx, userID, 7)
	require.NoError(t, err)
	assert.True(t, out.AlreadyAwarded)
	assert.Equal(t, int64(25), e.balance(t))

	history, err := e.ledger.History(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ledger.ReasonEnrollmentBonus, history[0].Reason)
}

func TestEnrollmentBonusRetryAfterAwardFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := e.service(&flakyAwarder{next: e.ledger, fails: 1}, nil)

	_, err := svc.OnEnrollmentSucceeded(ctx, userID, 7)
	require.Error(t, err)

	out, err := svc.OnEnrollmentSucceeded(ctx, userID, 7)
	require.NoError(t, err)
	assert.True(t, out.Awarded)
	assert.Equal(t, int64(25), e.balance(t))
}
