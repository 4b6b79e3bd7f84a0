// Package ledger — repository.go выполняет операции с таблицами users и karma_ledger.
// Запись в журнал и изменение баланса выполняются в одной транзакции БД.
package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/db/postgres"
)

// maxTxAttempts — сколько раз повторяем транзакцию при deadlock/serialization failure.
const maxTxAttempts = 3

// Repository хранит журнал и баланс в PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий журнала.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// AppendEntry добавляет запись в журнал и меняет баланс на amount.
//
// UPDATE ... RETURNING берёт блокировку строки пользователя до конца транзакции,
// поэтому начисления одному пользователю выполняются строго по очереди,
// а начисления разным пользователям не мешают друг другу.
func (r *Repository) AppendEntry(ctx context.Context, userID, amount int64, reason string) (*Entry, int64, error) {
	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		entry, balance, err := r.appendOnce(ctx, userID, amount, reason)
		if err == nil || !postgres.IsRetryable(err) {
			return entry, balance, err
		}
		lastErr = err
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"attempt": attempt,
		}).Warn("Конфликт транзакции начисления, повторяем")
	}
	return nil, 0, lastErr
}

func (r *Repository) appendOnce(ctx context.Context, userID, amount int64, reason string) (*Entry, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ошибка начала транзакции: %w", common.ErrStorageFailure, err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET karma_balance = karma_balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING karma_balance
	`, userID, amount).Scan(&balance)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, 0, common.ErrUserNotFound
		}
		return nil, 0, fmt.Errorf("%w: ошибка обновления баланса: %w", common.ErrStorageFailure, err)
	}

	entry := &Entry{UserID: userID, Amount: amount, Reason: reason}
	err = tx.QueryRow(ctx, `
		INSERT INTO karma_ledger (user_id, amount, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, userID, amount, reason).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ошибка записи в журнал: %w", common.ErrStorageFailure, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("%w: ошибка фиксации транзакции: %w", common.ErrStorageFailure, err)
	}
	return entry, balance, nil
}

// GetBalance возвращает кешированный баланс пользователя.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT karma_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if postgres.IsNoRows(err) {
			return 0, common.ErrUserNotFound
		}
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// ListEntries возвращает последние limit записей журнала пользователя.
func (r *Repository) ListEntries(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, reason, created_at
		FROM karma_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// FindDrift сверяет кешированные балансы с суммой журнала.
func (r *Repository) FindDrift(ctx context.Context) ([]Drift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.karma_balance, COALESCE(SUM(l.amount), 0) AS ledger_sum
		FROM users u
		LEFT JOIN karma_ledger l ON l.user_id = u.id
		GROUP BY u.id, u.karma_balance
		HAVING u.karma_balance <> COALESCE(SUM(l.amount), 0)
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка сверки журнала: %w", err)
	}
	defer rows.Close()

	var drifts []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.UserID, &d.Cached, &d.LedgerSum); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сверки: %w", err)
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}
