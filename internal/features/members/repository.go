// Package members — repository.go отвечает за операции с таблицей users в БД.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package members

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

// CreateMember добавляет пользователя. На конфликте по id обновляет только имя,
// баланс не трогает. created=false, если пользователь уже был.
func (r *Repository) CreateMember(ctx context.Context, m *Member) (bool, error) {
	query := `
		INSERT INTO users (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    updated_at = NOW()
		RETURNING karma_balance, created_at, updated_at, (xmax = 0) AS inserted
	`
	var created bool
	err := r.db.QueryRow(ctx, query, m.ID, m.DisplayName).Scan(
		&m.KarmaBalance, &m.CreatedAt, &m.UpdatedAt, &created,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка создания/обновления пользователя: %w", err)
	}
	return created, nil
}

// GetMember: если не найден — common.ErrUserNotFound.
func (r *Repository) GetMember(ctx context.Context, userID int64) (*Member, error) {
	query := `
		SELECT id, display_name, karma_balance, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var m Member
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.ID, &m.DisplayName, &m.KarmaBalance, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (id=%d): %w", userID, err)
	}
	return &m, nil
}

func (r *Repository) MemberExists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки существования: %w", err)
	}
	return exists, nil
}

// ListMembers возвращает пользователей по убыванию баланса.
func (r *Repository) ListMembers(ctx context.Context, limit int) ([]*Member, error) {
	query := `
		SELECT id, display_name, karma_balance, created_at, updated_at
		FROM users
		ORDER BY karma_balance DESC, id
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	defer rows.Close()

	var out []*Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.KarmaBalance, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}

	return out, nil
}
