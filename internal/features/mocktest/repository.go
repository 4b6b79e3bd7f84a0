// Package mocktest — repository.go: таблицы mock_tests и mock_test_attempts.
package mocktest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
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

const attemptColumns = `id, user_id, mock_test_id, score, percentage, status, karma_delta, reason, completed_at`

func scanAttempt(row pgx.Row) (*Attempt, error) {
	var a Attempt
	err := row.Scan(&a.ID, &a.UserID, &a.MockTestID, &a.Score, &a.Percentage,
		&a.Status, &a.KarmaDelta, &a.Reason, &a.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) CreateMockTest(ctx context.Context, t *MockTest) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO mock_tests (title, max_score, passing_threshold)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, t.Title, t.MaxScore, t.PassingThreshold).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания теста: %w", err)
	}
	return nil
}

func (r *Repository) GetMockTest(ctx context.Context, testID int64) (*MockTest, error) {
	var t MockTest
	err := r.db.QueryRow(ctx, `
		SELECT id, title, max_score, passing_threshold, created_at
		FROM mock_tests WHERE id = $1
	`, testID).Scan(&t.ID, &t.Title, &t.MaxScore, &t.PassingThreshold, &t.CreatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, common.ErrMockTestNotFound
		}
		return nil, fmt.Errorf("ошибка получения теста: %w", err)
	}
	return &t, nil
}

// SaveAttempt сохраняет попытку; заполняет ID и CompletedAt.
func (r *Repository) SaveAttempt(ctx context.Context, a *Attempt) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO mock_test_attempts (user_id, mock_test_id, score, percentage, status, karma_delta, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, completed_at
	`, a.UserID, a.MockTestID, a.Score, a.Percentage, a.Status, a.KarmaDelta, a.Reason).Scan(&a.ID, &a.CompletedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("%w: ошибка сохранения попытки: %w", common.ErrStorageFailure, err)
	}
	return nil
}

// DeleteAttempt удаляет попытку, для которой не удалось начислить карму.
func (r *Repository) DeleteAttempt(ctx context.Context, attemptID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM mock_test_attempts WHERE id = $1`, attemptID); err != nil {
		return fmt.Errorf("ошибка удаления попытки: %w", err)
	}
	return nil
}

// LatestAttempt — попытка с самым поздним completed_at.
func (r *Repository) LatestAttempt(ctx context.Context, userID, testID int64) (*Attempt, error) {
	a, err := scanAttempt(r.db.QueryRow(ctx, `
		SELECT `+attemptColumns+`
		FROM mock_test_attempts
		WHERE user_id = $1 AND mock_test_id = $2
		ORDER BY completed_at DESC, id DESC
		LIMIT 1
	`, userID, testID))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, common.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("ошибка получения попытки: %w", err)
	}
	return a, nil
}

func (r *Repository) ListAttempts(ctx context.Context, userID, testID int64, limit int) ([]*Attempt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+attemptColumns+`
		FROM mock_test_attempts
		WHERE user_id = $1 AND mock_test_id = $2
		ORDER BY completed_at DESC, id DESC
		LIMIT $3
	`, userID, testID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения попыток: %w", err)
	}
	defer rows.Close()

	var out []*Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования попытки: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
