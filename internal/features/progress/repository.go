// Package progress — repository.go: guard-таблицы lesson_completions и enrollment_rewards.
// Уникальный ключ (user_id, lesson_id) / (user_id, course_id) — это и есть
// защита от повторной награды.
package progress

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/db/postgres"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// InsertLessonCompletion создаёт guard-строку. false — строка уже была.
func (r *Repository) InsertLessonCompletion(ctx context.Context, userID, lessonID int64) (bool, error) {
	return r.insertGuard(ctx, `
		INSERT INTO lesson_completions (user_id, lesson_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, lesson_id) DO NOTHING
	`, userID, lessonID)
}

func (r *Repository) DeleteLessonCompletion(ctx context.Context, userID, lessonID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM lesson_completions WHERE user_id = $1 AND lesson_id = $2`, userID, lessonID)
	if err != nil {
		return fmt.Errorf("ошибка удаления завершения урока: %w", err)
	}
	return nil
}

func (r *Repository) InsertEnrollmentReward(ctx context.Context, userID, courseID int64) (bool, error) {
	return r.insertGuard(ctx, `
		INSERT INTO enrollment_rewards (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id) DO NOTHING
	`, userID, courseID)
}

func (r *Repository) DeleteEnrollmentReward(ctx context.Context, userID, courseID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM enrollment_rewards WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return fmt.Errorf("ошибка удаления бонуса за зачисление: %w", err)
	}
	return nil
}

func (r *Repository) insertGuard(ctx context.Context, query string, userID, entityID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, query, userID, entityID)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return false, common.ErrUserNotFound
		}
		return false, fmt.Errorf("%w: ошибка записи guard-строки: %w", common.ErrStorageFailure, err)
	}
	return tag.RowsAffected() == 1, nil
}
