package memory

import (
	"context"
	"fmt"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/features/streak"
)

// ApplyStreak выполняет fn под блокировкой пользователя.
func (db *DB) ApplyStreak(ctx context.Context, userID int64, fn streak.ApplyFunc) (*streak.Streak, error) {
	lock := db.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}

	db.mu.RLock()
	_, userExists := db.users[userID]
	current, hasStreak := db.streaks[userID]
	db.mu.RUnlock()

	if !userExists {
		return nil, common.ErrUserNotFound
	}

	var prev *streak.Streak
	if hasStreak {
		cp := current
		prev = &cp
	}

	next, save := fn(prev)
	if !save {
		return prev, nil
	}

	db.mu.Lock()
	now := db.now()
	if prev == nil {
		next.CreatedAt = now
	} else {
		next.CreatedAt = prev.CreatedAt
	}
	next.UpdatedAt = now
	db.streaks[userID] = next
	db.mu.Unlock()

	return &next, nil
}

func (db *DB) GetStreak(_ context.Context, userID int64) (*streak.Streak, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, ok := db.streaks[userID]
	if !ok {
		return nil, common.ErrStreakNotFound
	}
	return &s, nil
}
