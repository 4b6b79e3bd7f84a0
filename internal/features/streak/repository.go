// Package streak — repository.go выполняет операции с таблицей streaks.
// Чтение-изменение-запись стрика идёт в одной транзакции под блокировкой строки.
package streak

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/db/postgres"
)

const maxTxAttempts = 3

// Repository предоставляет методы для работы с таблицей streaks.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий стриков.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// ApplyStreak применяет fn к стрику пользователя под SELECT ... FOR UPDATE.
//
// Если записи нет, два первых касания могут прийти одновременно: одно вставит
// строку, второе получит ON CONFLICT DO NOTHING и повторит цикл уже с блокировкой
// существующей строки.
func (r *Repository) ApplyStreak(ctx context.Context, userID int64, fn ApplyFunc) (*Streak, error) {
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		s, retry, err := r.applyOnce(ctx, userID, fn)
		if err != nil && !postgres.IsRetryable(err) {
			return nil, err
		}
		if err == nil && !retry {
			return s, nil
		}
		log.WithFields(log.Fields{
			"user_id": userID,
			"attempt": attempt,
		}).Warn("Конфликт при обновлении стрика, повторяем")
	}
	return nil, fmt.Errorf("%w: стрик не обновлён после %d попыток", common.ErrStorageFailure, maxTxAttempts)
}

func (r *Repository) applyOnce(ctx context.Context, userID int64, fn ApplyFunc) (*Streak, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: ошибка начала транзакции: %w", common.ErrStorageFailure, err)
	}
	defer tx.Rollback(ctx)

	prev, err := scanStreak(tx.QueryRow(ctx, `
		SELECT user_id, current_streak, longest_streak, last_activity_date, created_at, updated_at
		FROM streaks
		WHERE user_id = $1
		FOR UPDATE
	`, userID))
	if err != nil && !postgres.IsNoRows(err) {
		return nil, false, fmt.Errorf("%w: ошибка чтения стрика: %w", common.ErrStorageFailure, err)
	}

	next, save := fn(prev)
	if !save {
		return prev, false, nil
	}

	if prev == nil {
		err = tx.QueryRow(ctx, `
			INSERT INTO streaks (user_id, current_streak, longest_streak, last_activity_date)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING created_at, updated_at
		`, userID, next.CurrentStreak, next.LongestStreak, next.LastActivityDate).Scan(&next.CreatedAt, &next.UpdatedAt)
		if err != nil {
			switch {
			case postgres.IsNoRows(err):
				return nil, true, nil
			case postgres.IsForeignKeyViolation(err):
				return nil, false, common.ErrUserNotFound
			}
			return nil, false, fmt.Errorf("%w: ошибка создания стрика: %w", common.ErrStorageFailure, err)
		}
	} else {
		err = tx.QueryRow(ctx, `
			UPDATE streaks
			SET current_streak = $2, longest_streak = $3, last_activity_date = $4, updated_at = NOW()
			WHERE user_id = $1
			RETURNING updated_at
		`, userID, next.CurrentStreak, next.LongestStreak, next.LastActivityDate).Scan(&next.UpdatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("%w: ошибка обновления стрика: %w", common.ErrStorageFailure, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("%w: ошибка фиксации транзакции: %w", common.ErrStorageFailure, err)
	}
	return &next, false, nil
}

// GetStreak возвращает стрик пользователя или common.ErrStreakNotFound.
func (r *Repository) GetStreak(ctx context.Context, userID int64) (*Streak, error) {
	s, err := scanStreak(r.db.QueryRow(ctx, `
		SELECT user_id, current_streak, longest_streak, last_activity_date, created_at, updated_at
		FROM streaks
		WHERE user_id = $1
	`, userID))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, common.ErrStreakNotFound
		}
		return nil, fmt.Errorf("ошибка получения стрика (user_id=%d): %w", userID, err)
	}
	return s, nil
}

func scanStreak(row pgx.Row) (*Streak, error) {
	var s Streak
	err := row.Scan(&s.UserID, &s.CurrentStreak, &s.LongestStreak, &s.LastActivityDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
