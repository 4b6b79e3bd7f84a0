// Package voting — repository.go: таблицы post_votes и community_posts.
// Строка голоса и счётчик upvotes меняются в одной транзакции.
package voting

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

const postColumns = `id, author_id, title, upvotes, downvotes, created_at`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Upvotes, &p.Downvotes, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePost добавляет пост (посты ведёт внешняя система, здесь — для наполнения).
func (r *Repository) CreatePost(ctx context.Context, p *Post) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO community_posts (author_id, title)
		VALUES ($1, $2)
		RETURNING id, upvotes, downvotes, created_at
	`, p.AuthorID, p.Title).Scan(&p.ID, &p.Upvotes, &p.Downvotes, &p.CreatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("ошибка создания поста: %w", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, postID int64) (*Post, error) {
	p, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM community_posts WHERE id = $1`, postID))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, common.ErrPostNotFound
		}
		return nil, fmt.Errorf("ошибка получения поста: %w", err)
	}
	return p, nil
}

// InsertVote создаёт голос и увеличивает upvotes в одной транзакции.
// inserted=false — голос уже был, счётчик не менялся.
func (r *Repository) InsertVote(ctx context.Context, voterID, postID int64) (bool, *Post, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("%w: ошибка начала транзакции: %w", common.ErrStorageFailure, err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM community_posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return false, nil, fmt.Errorf("%w: ошибка проверки поста: %w", common.ErrStorageFailure, err)
	}
	if !exists {
		return false, nil, common.ErrPostNotFound
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO post_votes (user_id, post_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`, voterID, postID, UpvoteValue)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return false, nil, common.ErrUserNotFound
		}
		return false, nil, fmt.Errorf("%w: ошибка записи голоса: %w", common.ErrStorageFailure, err)
	}
	inserted := tag.RowsAffected() == 1

	var post *Post
	if inserted {
		post, err = scanPost(tx.QueryRow(ctx, `
			UPDATE community_posts SET upvotes = upvotes + 1
			WHERE id = $1
			RETURNING `+postColumns, postID))
	} else {
		post, err = scanPost(tx.QueryRow(ctx, `SELECT `+postColumns+` FROM community_posts WHERE id = $1`, postID))
	}
	if err != nil {
		return false, nil, fmt.Errorf("%w: ошибка обновления счётчика: %w", common.ErrStorageFailure, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, nil, fmt.Errorf("%w: ошибка фиксации транзакции: %w", common.ErrStorageFailure, err)
	}
	return inserted, post, nil
}

func (r *Repository) HasVoted(ctx context.Context, voterID, postID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM post_votes WHERE user_id = $1 AND post_id = $2)`, voterID, postID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки голоса: %w", err)
	}
	return exists, nil
}
