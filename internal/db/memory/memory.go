// Package memory — хранилище в памяти процесса. Реализует интерфейсы Store
// всех фич и даёт те же гарантии, что и PostgreSQL: запись журнала и баланса
// атомарна, изменения одного пользователя сериализуются, разные пользователи
// не ждут друг друга.
//
// Используется для локальной разработки (STORAGE_DRIVER=memory) и в тестах.
// Данные живут до рестарта.
package memory

import (
	"sync"
	"time"

	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
	"serotonyl.ru/edu-engagement/internal/features/mocktest"
	"serotonyl.ru/edu-engagement/internal/features/progress"
	"serotonyl.ru/edu-engagement/internal/features/ranking"
	"serotonyl.ru/edu-engagement/internal/features/streak"
	"serotonyl.ru/edu-engagement/internal/features/voting"
)

type pairKey struct {
	userID   int64
	entityID int64
}

// DB — хранилище в памяти.
type DB struct {
	mu sync.RWMutex

	users   map[int64]*members.Member
	ledger  map[int64][]ledger.Entry
	streaks map[int64]streak.Streak

	posts map[int64]*voting.Post
	votes map[pairKey]time.Time

	tests    map[int64]*mocktest.MockTest
	attempts map[pairKey][]*mocktest.Attempt

	lessonCompletions map[pairKey]time.Time
	enrollmentRewards map[pairKey]time.Time

	nextEntryID   int64
	nextPostID    int64
	nextTestID    int64
	nextAttemptID int64

	// Блокировки на пользователя для чтения-изменения-записи.
	locks sync.Map // int64 -> *sync.Mutex

	now func() time.Time
}

// New создаёт пустое хранилище.
func New() *DB {
	return &DB{
		users:             make(map[int64]*members.Member),
		ledger:            make(map[int64][]ledger.Entry),
		streaks:           make(map[int64]streak.Streak),
		posts:             make(map[int64]*voting.Post),
		votes:             make(map[pairKey]time.Time),
		tests:             make(map[int64]*mocktest.MockTest),
		attempts:          make(map[pairKey][]*mocktest.Attempt),
		lessonCompletions: make(map[pairKey]time.Time),
		enrollmentRewards: make(map[pairKey]time.Time),
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени для created_at/completed_at.
func (db *DB) WithClock(now func() time.Time) *DB {
	db.now = now
	return db
}

func (db *DB) userLock(userID int64) *sync.Mutex {
	v, _ := db.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

var (
	_ members.Store  = (*DB)(nil)
	_ ledger.Store   = (*DB)(nil)
	_ streak.Store   = (*DB)(nil)
	_ voting.Store   = (*DB)(nil)
	_ mocktest.Store = (*DB)(nil)
	_ progress.Store = (*DB)(nil)
	_ ranking.Store  = (*DB)(nil)
)
