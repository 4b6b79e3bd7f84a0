package memory

import (
	"context"
	"fmt"
	"sort"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
)

// --- members.Store ---

func (db *DB) CreateMember(_ context.Context, m *members.Member) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now()
	if existing, ok := db.users[m.ID]; ok {
		existing.DisplayName = m.DisplayName
		existing.UpdatedAt = now
		*m = *existing
		return false, nil
	}

	m.KarmaBalance = 0
	m.CreatedAt = now
	m.UpdatedAt = now
	stored := *m
	db.users[m.ID] = &stored
	return true, nil
}

func (db *DB) GetMember(_ context.Context, userID int64) (*members.Member, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (db *DB) MemberExists(_ context.Context, userID int64) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.users[userID]
	return ok, nil
}

func (db *DB) ListMembers(_ context.Context, limit int) ([]*members.Member, error) {
	db.mu.RLock()
	out := make([]*members.Member, 0, len(db.users))
	for _, u := range db.users {
		cp := *u
		out = append(out, &cp)
	}
	db.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].KarmaBalance != out[j].KarmaBalance {
			return out[i].KarmaBalance > out[j].KarmaBalance
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- ledger.Store ---

// AppendEntry атомарно добавляет запись журнала и меняет баланс.
func (db *DB) AppendEntry(ctx context.Context, userID, amount int64, reason string) (*ledger.Entry, int64, error) {
	lock := db.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[userID]
	if !ok {
		return nil, 0, common.ErrUserNotFound
	}

	db.nextEntryID++
	now := db.now()
	entry := ledger.Entry{
		ID:        db.nextEntryID,
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: now,
	}
	db.ledger[userID] = append(db.ledger[userID], entry)
	u.KarmaBalance += amount
	u.UpdatedAt = now

	return &entry, u.KarmaBalance, nil
}

func (db *DB) GetBalance(_ context.Context, userID int64) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[userID]
	if !ok {
		return 0, common.ErrUserNotFound
	}
	return u.KarmaBalance, nil
}

// ListEntries возвращает последние limit записей, новые первыми.
func (db *DB) ListEntries(_ context.Context, userID int64, limit int) ([]*ledger.Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	entries := db.ledger[userID]
	if limit <= 0 {
		limit = len(entries)
	}
	out := make([]*ledger.Entry, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := entries[i]
		out = append(out, &e)
	}
	return out, nil
}

func (db *DB) FindDrift(_ context.Context) ([]ledger.Drift, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var drifts []ledger.Drift
	for id, u := range db.users {
		var sum int64
		for _, e := range db.ledger[id] {
			sum += e.Amount
		}
		if sum != u.KarmaBalance {
			drifts = append(drifts, ledger.Drift{UserID: id, Cached: u.KarmaBalance, LedgerSum: sum})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].UserID < drifts[j].UserID })
	return drifts, nil
}

// ForceBalance перезаписывает кешированный баланс в обход журнала.
// Только для проверки сверки: в рабочем коде баланс меняет лишь AppendEntry.
func (db *DB) ForceBalance(userID, balance int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u, ok := db.users[userID]; ok {
		u.KarmaBalance = balance
	}
}

// --- ranking.Store ---

func (db *DB) CountAbove(_ context.Context, balance int64) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var n int64
	for _, u := range db.users {
		if u.KarmaBalance > balance {
			n++
		}
	}
	return n, nil
}

func (db *DB) CountUsers(_ context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return int64(len(db.users)), nil
}
