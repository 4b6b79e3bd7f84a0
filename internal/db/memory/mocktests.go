package memory

import (
	"context"
	"sort"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/features/mocktest"
)

func (db *DB) CreateMockTest(_ context.Context, t *mocktest.MockTest) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.nextTestID++
	t.ID = db.nextTestID
	t.CreatedAt = db.now()
	stored := *t
	db.tests[t.ID] = &stored
	return nil
}

func (db *DB) GetMockTest(_ context.Context, testID int64) (*mocktest.MockTest, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.tests[testID]
	if !ok {
		return nil, common.ErrMockTestNotFound
	}
	out := *t
	return &out, nil
}

func (db *DB) SaveAttempt(_ context.Context, a *mocktest.Attempt) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[a.UserID]; !ok {
		return common.ErrUserNotFound
	}
	if _, ok := db.tests[a.MockTestID]; !ok {
		return common.ErrMockTestNotFound
	}

	db.nextAttemptID++
	a.ID = db.nextAttemptID
	a.CompletedAt = db.now()
	stored := *a
	key := pairKey{userID: a.UserID, entityID: a.MockTestID}
	db.attempts[key] = append(db.attempts[key], &stored)
	return nil
}

func (db *DB) DeleteAttempt(_ context.Context, attemptID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for key, list := range db.attempts {
		for i, a := range list {
			if a.ID == attemptID {
				db.attempts[key] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// sortedAttempts возвращает копии попыток, новые первыми.
func (db *DB) sortedAttempts(userID, testID int64) []*mocktest.Attempt {
	list := db.attempts[pairKey{userID: userID, entityID: testID}]
	out := make([]*mocktest.Attempt, 0, len(list))
	for _, a := range list {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.After(out[j].CompletedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (db *DB) LatestAttempt(_ context.Context, userID, testID int64) (*mocktest.Attempt, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	list := db.sortedAttempts(userID, testID)
	if len(list) == 0 {
		return nil, common.ErrAttemptNotFound
	}
	return list[0], nil
}

func (db *DB) ListAttempts(_ context.Context, userID, testID int64, limit int) ([]*mocktest.Attempt, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	list := db.sortedAttempts(userID, testID)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
