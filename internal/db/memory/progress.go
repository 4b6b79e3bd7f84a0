package memory

import (
	"context"
	"time"

	"serotonyl.ru/edu-engagement/internal/common"
)

func (db *DB) InsertLessonCompletion(_ context.Context, userID, lessonID int64) (bool, error) {
	return db.insertGuard(db.lessonCompletions, userID, lessonID)
}

func (db *DB) DeleteLessonCompletion(_ context.Context, userID, lessonID int64) error {
	db.deleteGuard(db.lessonCompletions, userID, lessonID)
	return nil
}

func (db *DB) InsertEnrollmentReward(_ context.Context, userID, courseID int64) (bool, error) {
	return db.insertGuard(db.enrollmentRewards, userID, courseID)
}

func (db *DB) DeleteEnrollmentReward(_ context.Context, userID, courseID int64) error {
	db.deleteGuard(db.enrollmentRewards, userID, courseID)
	return nil
}

// insertGuard возвращает true, если запись создана впервые.
func (db *DB) insertGuard(guards map[pairKey]time.Time, userID, entityID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[userID]; !ok {
		return false, common.ErrUserNotFound
	}
	key := pairKey{userID: userID, entityID: entityID}
	if _, exists := guards[key]; exists {
		return false, nil
	}
	guards[key] = db.now()
	return true, nil
}

func (db *DB) deleteGuard(guards map[pairKey]time.Time, userID, entityID int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(guards, pairKey{userID: userID, entityID: entityID})
}
