// Package voting — голоса за посты сообщества: один голос на пару
// (пользователь, пост) и награда автору поста.
package voting

import "time"

// Post — пост сообщества с денормализованными счётчиками.
// Downvotes хранится и отдаётся, но ни один путь его не пишет.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	Title     string    `db:"title" json:"title"`
	Upvotes   int64     `db:"upvotes" json:"upvotes"`
	Downvotes int64     `db:"downvotes" json:"downvotes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UpvoteValue — единственное значение голоса, которое записывается.
const UpvoteValue = 1

// Outcome — результат голосования.
type Outcome struct {
	PostID       int64  `json:"post_id"`
	VoterID      int64  `json:"voter_id"`
	Voted        bool   `json:"voted"`         // создан новый голос
	AlreadyVoted bool   `json:"already_voted"` // голос уже был, ничего не изменилось
	Rewarded     bool   `json:"rewarded"`      // автору начислена карма
	Upvotes      int64  `json:"upvotes"`
	Message      string `json:"message"`
}

// Сообщения для пользователя
const (
	MsgVoted        = "Голос учтён"
	MsgAlreadyVoted = "Вы уже голосовали за этот пост"
)
