package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/edu-engagement/internal/features/ledger"
)

type fakeReconciler struct {
	calls atomic.Int32
	err   error
}

func (f *fakeReconciler) Reconcile(context.Context) ([]ledger.Drift, error) {
	f.calls.Add(1)
	return []ledger.Drift{{UserID: 1, Cached: 10, LedgerSum: 5}}, f.err
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(&fakeReconciler{}, "not a cron", nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(&fakeReconciler{}, "30 3 * * *", nil)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestRunReconcile(t *testing.T) {
	r := &fakeReconciler{}
	s := NewScheduler(r, "@daily", nil)

	s.RunReconcile(context.Background())
	r.err = errors.New("db down")
	s.RunReconcile(context.Background())

	assert.Equal(t, int32(2), r.calls.Load())
}
